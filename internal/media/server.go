// Package media exposes upload and download endpoints for post media.
package media

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"crosspost/internal/common"
	"crosspost/internal/dbmongo"
)

// uploads above this size are rejected before touching GridFS
const maxUploadBytes = 64 << 20

type HTTPServer struct {
	storage *dbmongo.MediaStorage
	baseURL string
	log     zerolog.Logger
}

func NewHTTPServer(mongoClient *dbmongo.MongoClient, baseURL string, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		storage: dbmongo.NewMediaStorage(mongoClient),
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("component", "media").Logger(),
	}
}

func (s *HTTPServer) Register(router *mux.Router, auth mux.MiddlewareFunc) {
	router.HandleFunc("/media/{fileID}", s.serveFile).Methods("GET")

	upload := router.PathPrefix("/media").Subrouter()
	upload.Use(auth)
	upload.HandleFunc("", s.uploadFile).Methods("POST")
}

type uploadResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	FileType string `json:"file_type"`
}

func (s *HTTPServer) uploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if !strings.HasPrefix(mimeType, "image/") && !strings.HasPrefix(mimeType, "video/") {
		common.WriteError(w, http.StatusBadRequest, "only image and video uploads are supported")
		return
	}

	media, err := s.storage.UploadFile(r.Context(), header.Filename, mimeType, userID, file)
	if err != nil {
		s.log.Error().Err(err).Str("filename", header.Filename).Msg("upload failed")
		common.WriteError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	s.log.Info().Str("file_id", media.ID).Uint64("user_id", userID).Int64("size", media.Size).Msg("media uploaded")
	common.WriteJSON(w, http.StatusCreated, uploadResponse{
		ID:       media.ID,
		URL:      fmt.Sprintf("%s/media/%s", s.baseURL, media.ID),
		Filename: media.Filename,
		Size:     media.Size,
		FileType: media.FileType.String(),
	})
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]

	reader, media, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		common.WriteError(w, http.StatusNotFound, "file not found")
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	contentType := media.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", media.Size))
	if _, err := io.Copy(w, reader); err != nil {
		s.log.Error().Err(err).Str("file_id", fileID).Msg("stream failed")
	}
}
