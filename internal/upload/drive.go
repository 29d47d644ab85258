package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DriveConfig points the uploader at a Google Drive folder.
type DriveConfig struct {
	// AccessToken is a fallback bearer token with drive.file scope, used
	// when the request carries none of its own.
	AccessToken string
	// FolderID is the Drive folder that receives proof images.
	FolderID string
}

// Drive stores proof images in a Google Drive folder and makes each one
// readable by link. Files land in three steps: media upload, metadata
// patch into the folder, then an anyone-reader permission.
type Drive struct {
	cfg    DriveConfig
	hc     *http.Client
	logger *slog.Logger

	uploadURL string
	apiURL    string
}

func NewDrive(cfg DriveConfig, logger *slog.Logger) *Drive {
	return &Drive{
		cfg:       cfg,
		hc:        &http.Client{Timeout: 30 * time.Second},
		logger:    logger.With("component", "upload"),
		uploadURL: "https://www.googleapis.com/upload/drive/v3/files",
		apiURL:    "https://www.googleapis.com/drive/v3/files",
	}
}

func (d *Drive) Upload(ctx context.Context, token, filename, contentType string, data []byte) (*Result, error) {
	if err := Validate(filename, contentType, int64(len(data))); err != nil {
		return nil, err
	}
	if token == "" {
		token = d.cfg.AccessToken
	}
	if token == "" {
		return nil, ErrMissingToken
	}
	name := ObjectName(filename, time.Now())

	fileID, err := d.uploadMedia(ctx, token, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}
	if err := d.patchMetadata(ctx, token, fileID, name); err != nil {
		return nil, fmt.Errorf("set metadata: %w", err)
	}
	if err := d.sharePublic(ctx, token, fileID); err != nil {
		return nil, fmt.Errorf("share file: %w", err)
	}

	return &Result{
		URL:           "https://drive.google.com/uc?id=" + fileID,
		ViewLink:      "https://drive.google.com/file/d/" + fileID + "/view",
		ThumbnailLink: "https://drive.google.com/thumbnail?id=" + fileID,
	}, nil
}

func (d *Drive) uploadMedia(ctx context.Context, token, contentType string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.uploadURL+"?uploadType=media", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var out struct {
		ID string `json:"id"`
	}
	if err := d.do(req, token, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("drive returned no file id")
	}
	return out.ID, nil
}

func (d *Drive) patchMetadata(ctx context.Context, token, fileID, name string) error {
	meta := map[string]any{"name": name}
	body, _ := json.Marshal(meta)

	url := d.apiURL + "/" + fileID
	if d.cfg.FolderID != "" {
		url += "?addParents=" + d.cfg.FolderID
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return d.do(req, token, nil)
}

func (d *Drive) sharePublic(ctx context.Context, token, fileID string) error {
	body := []byte(`{"role":"reader","type":"anyone"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL+"/"+fileID+"/permissions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return d.do(req, token, nil)
}

func (d *Drive) do(req *http.Request, token string, out any) error {
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Warn("drive request rejected", "status", resp.StatusCode, "url", req.URL.Path)
		return fmt.Errorf("drive returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode drive response: %w", err)
		}
	}
	return nil
}
