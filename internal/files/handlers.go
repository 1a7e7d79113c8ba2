package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/i-christian/fileDrop/internal/filestore"
	"github.com/i-christian/fileDrop/internal/utils"
)

// DownloadPath is the route prefix under which stored files are served.
const DownloadPath = "/api/files/download/"

type FileHandler struct {
	service       *FileService
	logger        *slog.Logger
	maxUploadSize int64
}

func NewFileHandler(maxUploadSize int64, service *FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		service:       service,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// Upload handles streaming file uploads from the multipart field "file".
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	reader, err := r.MultipartReader()
	if err != nil {
		utils.TextResponse(w, http.StatusBadRequest, "malformed multipart request")
		return
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.uploadError(w, err)
			return
		}

		if part.FormName() != "file" {
			part.Close()
			continue
		}
		defer part.Close()

		filename := part.FileName()
		if filename == "" {
			utils.TextResponse(w, http.StatusBadRequest, "filename is missing")
			return
		}

		uploaded, err := h.service.UploadFile(r.Context(), filename, part)
		if err != nil {
			h.uploadError(w, err)
			return
		}

		w.Header().Set("X-Checksum-Blake2b", uploaded.Checksum)
		utils.TextResponse(w, http.StatusOK, "Upload completed! Download link: "+downloadURL(r, uploaded.Name))
		return
	}

	utils.TextResponse(w, http.StatusBadRequest, "missing 'file' field in form data")
}

func (h *FileHandler) uploadError(w http.ResponseWriter, err error) {
	utils.WriteServerError(h.logger, "failed to upload file", err)

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		utils.TextResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file must not be larger than %d bytes", maxBytesErr.Limit))
	case errors.Is(err, filestore.ErrInvalidName):
		utils.TextResponse(w, http.StatusBadRequest, "invalid file name")
	default:
		utils.TextResponse(w, http.StatusBadRequest, "Upload error")
	}
}

// Download streams the file to the client
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileName, err := downloadName(r)
	if err != nil {
		utils.EmptyResponse(w, http.StatusBadRequest)
		return
	}

	obj, err := h.service.DownloadFile(r.Context(), fileName)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			utils.EmptyResponse(w, http.StatusNotFound)
			return
		}
		if errors.Is(err, filestore.ErrPathTraversal) {
			h.logger.Warn("rejected download outside storage root", "name", fileName, "remote_addr", r.RemoteAddr)
		} else {
			utils.WriteServerError(h.logger, "failed to prepare download", err)
		}
		utils.EmptyResponse(w, http.StatusBadRequest)
		return
	}
	defer obj.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": obj.Name})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	if !obj.ModTime.IsZero() {
		w.Header().Set("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}

	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Error("connection dropped during download", "name", obj.Name, "error", err)
	}
}

// List returns the names of all stored files as a JSON array.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListFiles(r.Context())
	if err != nil {
		utils.WriteServerError(h.logger, "failed to list files", err)
		utils.EmptyResponse(w, http.StatusBadRequest)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, names, nil); err != nil {
		utils.WriteServerError(h.logger, "failed to send file list", err)
		utils.EmptyResponse(w, http.StatusBadRequest)
	}
}

// downloadName returns the URL-decoded wildcard segment of the download route.
// chi matches against the raw path when the request carried encoded
// characters, in which case the segment still needs decoding.
func downloadName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// downloadURL builds an absolute link from the request's own scheme and host.
func downloadURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   DownloadPath + name,
	}
	return u.String()
}
