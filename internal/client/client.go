package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extensions the server will accept; checked client-side so an obviously
// bad upload fails before any bytes are sent.
var uploadExtensions = map[string]map[string]bool{
	"pictures": {
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	},
	"downloads": {
		".pdf": true, ".doc": true, ".docx": true, ".txt": true, ".zip": true, ".rar": true,
	},
}

// Asset mirrors one entry of the server's list response.
type Asset struct {
	Filename string    `json:"filename"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// SaveResponse is the server's reply to an upload.
type SaveResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// DeleteResponse is the server's reply to a delete.
type DeleteResponse struct {
	Message      string   `json:"message"`
	DeletedFiles []string `json:"deleted_files"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client talks to a running shelf server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload sends a file as a multipart POST to /{class}, optionally scoped
// to a book id.
func (c *Client) Upload(class, filePath, bookID string) (*SaveResponse, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !uploadExtensions[class][ext] {
		return nil, &ValidationError{Arg: filePath, Cause: fmt.Sprintf("extension %q not allowed for %s", ext, class)}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	endpoint := c.baseURL + "/" + class
	if bookID != "" {
		endpoint += "?book_id=" + url.QueryEscape(bookID)
	}

	resp, err := c.http.Post(endpoint, writer.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	result := &SaveResponse{}
	if err := decodeResponse(resp, result); err != nil {
		return nil, err
	}
	return result, nil
}

// List fetches the assets of a class.
func (c *Client) List(class string) ([]Asset, error) {
	resp, err := c.http.Get(c.baseURL + "/" + class)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	var assets []Asset
	if err := decodeResponse(resp, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// DeleteByBookID removes every asset of the class stored for a book id.
func (c *Client) DeleteByBookID(class, bookID string) (*DeleteResponse, error) {
	return c.delete(class, "book_id="+url.QueryEscape(bookID))
}

// DeleteByFilename removes a single asset by exact name.
func (c *Client) DeleteByFilename(class, filename string) (*DeleteResponse, error) {
	return c.delete(class, "filename="+url.QueryEscape(filename))
}

func (c *Client) delete(class, query string) (*DeleteResponse, error) {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/"+class+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build delete request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	result := &DeleteResponse{}
	if err := decodeResponse(resp, result); err != nil {
		return nil, err
	}
	return result, nil
}

// decodeResponse unmarshals a success body into out, or turns an error
// body into a Go error carrying the server's message.
func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
