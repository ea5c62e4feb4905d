package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"lessonhub/pkg/otel"
)

var errNotRegularFile = errors.New("not a regular file")

// getImage streams a lesson image from the images directory.
// @Summary Get lesson image
// @Produce octet-stream
// @Param img path string true "Image file name"
// @Success 200 {file} file
// @Failure 404 {object} MessageResponse
// @Router /images/{img} [get]
func (s *Server) getImage(w http.ResponseWriter, r *http.Request) error {
	name := mux.Vars(r)["img"]

	_, span := otel.AddSpan(r.Context(), "api.getImage", attribute.String("image", name))
	defer span.End()

	f, info, err := s.openImage(name)
	if err != nil {
		return &Error{Status: http.StatusNotFound, Message: "Image not found", Err: err}
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return nil
}

// openImage opens name inside the images directory. Names that would leave
// the directory are rejected by the os.Root.
func (s *Server) openImage(name string) (*os.File, fs.FileInfo, error) {
	if !filepath.IsLocal(name) {
		return nil, nil, fmt.Errorf("image %q: %w", name, fs.ErrInvalid)
	}

	root, err := os.OpenRoot(s.imagesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open images dir: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("image %q: %w", name, errNotRegularFile)
	}

	return f, info, nil
}
