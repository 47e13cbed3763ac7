package handlers

import (
	"io"
	"net/http"
	"strings"

	"server/internal/storage"
)

const (
	maxUploadFiles    = 10
	maxUploadFileSize = 10 << 20 // 10 MiB per file
)

type uploadedFile struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
	Size int    `json:"size"`
}

// UploadsCreate ingests source images (or a brand logo, when bucket=logos)
// ahead of a generation request and returns their storage references.
func (a *App) UploadsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := r.ParseMultipartForm(maxUploadFileSize); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	bucket := storage.BucketOriginalImages
	if r.FormValue("bucket") == "logos" {
		bucket = storage.BucketLogos
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "at least one file is required")
		return
	}
	if len(files) > maxUploadFiles {
		a.error(w, http.StatusBadRequest, "bad_request", "too many files")
		return
	}

	uploaded := make([]uploadedFile, 0, len(files))
	for _, header := range files {
		if header.Size > maxUploadFileSize {
			a.error(w, http.StatusBadRequest, "bad_request", "file too large: "+header.Filename)
			return
		}
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			a.error(w, http.StatusBadRequest, "bad_request", "unsupported file type: "+header.Filename)
			return
		}

		file, err := header.Open()
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to read upload")
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadFileSize+1))
		file.Close()
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to read upload")
			return
		}
		if len(data) > maxUploadFileSize {
			a.error(w, http.StatusBadRequest, "bad_request", "file too large: "+header.Filename)
			return
		}

		key := storage.UniqueKey(userID, header.Filename)
		url, err := a.Store.Put(r.Context(), bucket, key, data, contentType)
		if err != nil {
			a.Logger.Error().Err(err).Str("file", header.Filename).Msg("upload store failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to store upload")
			return
		}
		uploaded = append(uploaded, uploadedFile{Name: header.Filename, Ref: url, Size: len(data)})
	}

	a.json(w, http.StatusCreated, map[string]any{"files": uploaded})
}
