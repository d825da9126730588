package storage

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Cloudinary configuration via environment variables:
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET,
// CLOUDINARY_FOLDER (optional).

var mediaHTTPClient = &http.Client{Timeout: 30 * time.Second}

type cloudinaryConfig struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
}

func loadCloudinaryConfig() (*cloudinaryConfig, error) {
	cfg := &cloudinaryConfig{
		cloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		apiKey:    os.Getenv("CLOUDINARY_API_KEY"),
		apiSecret: os.Getenv("CLOUDINARY_API_SECRET"),
		folder:    os.Getenv("CLOUDINARY_FOLDER"),
	}
	if cfg.cloudName == "" || cfg.apiKey == "" || cfg.apiSecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	return cfg, nil
}

func (c *cloudinaryConfig) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

func (c *cloudinaryConfig) publicID(name string) string {
	if c.folder != "" {
		return c.folder + "/" + name
	}
	return name
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadFile sends a multipart upload (receipt, document, CV) to Cloudinary
// and returns the hosted URL. resourceType is "image" or "raw". Declared as a
// variable so tests can stand in for the network call.
var UploadFile = func(file io.Reader, fileName, resourceType, publicID string) (string, error) {
	cfg, err := loadCloudinaryConfig()
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/%s/upload", cfg.cloudName, resourceType)
	finalID := cfg.publicID(publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.WriteField("api_key", cfg.apiKey)
	writer.WriteField("public_id", finalID)
	writer.WriteField("timestamp", timestamp)
	writer.WriteField("signature", cfg.sign(finalID, timestamp))
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return doCloudinaryUpload(req)
}

// UploadBase64Image uploads a data-URL or raw base64 image payload.
func UploadBase64Image(base64ImageSrc, publicID string) (string, error) {
	if base64ImageSrc == "" {
		return "", errors.New("empty image payload")
	}

	cfg, err := loadCloudinaryConfig()
	if err != nil {
		return "", err
	}

	payload := base64ImageSrc
	if i := strings.Index(base64ImageSrc, ","); i != -1 {
		payload = base64ImageSrc[i+1:]
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cfg.cloudName)
	finalID := cfg.publicID(publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", cfg.apiKey)
	form.Add("public_id", finalID)
	form.Add("timestamp", timestamp)
	form.Add("signature", cfg.sign(finalID, timestamp))

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return doCloudinaryUpload(req)
}

func doCloudinaryUpload(req *http.Request) (string, error) {
	res, err := mediaHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var parsed cloudinaryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("cloudinary: unexpected response (status %d)", res.StatusCode)
	}
	if parsed.Error.Message != "" {
		return "", errors.New("cloudinary: " + parsed.Error.Message)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudinary: upload failed with status %d", res.StatusCode)
	}

	out := parsed.SecureURL
	if out == "" {
		out = parsed.URL
	}
	if out == "" {
		return "", errors.New("cloudinary: no URL in response")
	}
	return out, nil
}

// DeleteImage removes a previously uploaded asset by its URL.
func DeleteImage(imageURL string) error {
	if !strings.Contains(imageURL, "res.cloudinary.com") {
		return errors.New("not a cloudinary URL")
	}

	cfg, err := loadCloudinaryConfig()
	if err != nil {
		return err
	}

	parts := strings.Split(imageURL, "/")
	last := parts[len(parts)-1]
	finalID := cfg.publicID(strings.Split(last, ".")[0])
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("public_id", finalID)
	form.Add("api_key", cfg.apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", cfg.sign(finalID, timestamp))

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", cfg.cloudName)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := mediaHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var parsed struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Error.Message != "" {
		return errors.New("cloudinary: " + parsed.Error.Message)
	}
	if parsed.Result != "ok" {
		return fmt.Errorf("cloudinary: deletion result %q", parsed.Result)
	}
	return nil
}
