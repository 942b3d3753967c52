// Package docs registers the API description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/places": {
            "get": {"tags": ["places"], "summary": "Browse places", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["places"], "summary": "Publish a place", "produces": ["application/json"], "responses": {"201": {"description": "Created"}}},
            "put": {"tags": ["places"], "summary": "Update a place you own", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/places/{id}": {
            "get": {"tags": ["places"], "summary": "Place detail", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["places"], "summary": "Delete a place you own", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Place has bookings"}}}
        },
        "/places/{id}/reviews": {
            "get": {"tags": ["reviews"], "summary": "Reviews of a place with its average rating", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/user-places": {
            "get": {"tags": ["places"], "summary": "Places owned by the caller", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/bookings": {
            "get": {"tags": ["bookings"], "summary": "The caller's bookings, newest first", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["bookings"], "summary": "Book a place", "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/bookings/{id}": {
            "get": {"tags": ["bookings"], "summary": "Booking detail for its guest or host", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/bookings/{id}/status": {
            "put": {"tags": ["bookings"], "summary": "Confirm, complete or cancel a booking", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/host-bookings": {
            "get": {"tags": ["bookings"], "summary": "Bookings on the caller's places", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/review": {
            "post": {"tags": ["reviews"], "summary": "Review a completed stay", "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "422": {"description": "Booking not completed"}}}
        },
        "/review/{id}/update": {
            "put": {"tags": ["reviews"], "summary": "Edit your review", "produces": ["application/json"], "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/review/user": {
            "get": {"tags": ["reviews"], "summary": "Reviews written by the caller", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/register": {
            "post": {"tags": ["users"], "summary": "Register a new account", "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}}}
        },
        "/login": {
            "post": {"tags": ["users"], "summary": "Log in with email and password", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/google/login": {
            "post": {"tags": ["users"], "summary": "Log in with a Google ID token", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/logout": {
            "get": {"tags": ["users"], "summary": "Log out", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/profile": {
            "get": {"tags": ["users"], "summary": "Current user's profile", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/update-user": {
            "put": {"tags": ["users"], "summary": "Update name, picture or password", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/upload": {
            "post": {"tags": ["uploads"], "summary": "Upload place photos", "consumes": ["multipart/form-data"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/upload-by-link": {
            "post": {"tags": ["uploads"], "summary": "Copy a remote photo into the blob store", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Staybook API",
	Description:      "Listings, bookings and reviews for short-term rentals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
