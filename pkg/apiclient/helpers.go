package apiclient

import (
	"fmt"
	"net/http"
)

// Typed wrappers over Client.do so each endpoint method in the resource
// files stays a one-liner.

func getResource[T any](c *Client, path string) (*T, error) {
	var out T
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func listResources[T any](c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func createResource[T any](c *Client, path string, body any) (*T, error) {
	var out T
	if err := c.do(http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func updateResource[T any](c *Client, path string, body any) (*T, error) {
	var out T
	if err := c.do(http.MethodPut, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func deleteResource(c *Client, path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}

// resourcePath formats identifiers into a path template.
func resourcePath(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
