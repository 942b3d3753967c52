package config

import (
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
)

var ErrCloudinaryNotConfigured = errors.New("CLOUDINARY_URL is not set")

func ConnectCloudinary(cfg *Config) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryURL == "" {
		return nil, ErrCloudinaryNotConfigured
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return cld, nil
}
