package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const (
	uploadFolder  = "places"
	uploadTimeout = 30 * time.Second
)

// BlobStore stores photos under generated names and returns their public URL.
type BlobStore interface {
	Put(ctx context.Context, name string, src any) (string, error)
}

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary) *CloudinaryStore {
	return &CloudinaryStore{cld: cld, folder: uploadFolder}
}

// Put uploads src, which is a reader or a remote URL string.
func (s *CloudinaryStore) Put(ctx context.Context, name string, src any) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: name,
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

type Upload struct {
	Filename string
	Body     io.Reader
}

type UploadService struct {
	blobs BlobStore
}

// NewUploadService builds the service. A nil blobs makes every upload fail
// with ErrUnavailable.
func NewUploadService(blobs BlobStore) *UploadService {
	return &UploadService{blobs: blobs}
}

func (s *UploadService) UploadFiles(ctx context.Context, files []Upload) ([]string, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is not configured: %w", ErrUnavailable)
	}
	if len(files) == 0 {
		verr := newValidationError()
		verr.add("photos", "at least one file is required")
		return nil, verr
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	urls := make([]string, 0, len(files))
	for _, f := range files {
		u, err := s.blobs.Put(ctx, generatedName(), f.Body)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w: %w", f.Filename, ErrUnavailable, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (s *UploadService) UploadByLink(ctx context.Context, link string) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("blob store is not configured: %w", ErrUnavailable)
	}

	link = strings.TrimSpace(link)
	parsed, err := url.ParseRequestURI(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		verr := newValidationError()
		verr.add("link", "must be an http(s) url")
		return "", verr
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	u, err := s.blobs.Put(ctx, generatedName(), link)
	if err != nil {
		return "", fmt.Errorf("upload by link: %w: %w", ErrUnavailable, err)
	}
	return u, nil
}

func generatedName() string {
	return "photo_" + uuid.NewString()
}
