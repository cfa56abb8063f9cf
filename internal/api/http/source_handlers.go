package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/storage"
)

var allowedExtensions = map[string]extract.Kind{
	".pdf":  extract.KindPDF,
	".doc":  extract.KindDocx,
	".docx": extract.KindDocx,
	".png":  extract.KindImage,
	".jpg":  extract.KindImage,
	".jpeg": extract.KindImage,
	".gif":  extract.KindImage,
}

// SubmitSourceHandler accepts a URL (json or form field) or an uploaded
// file. URL sources store the URL and extract lazily at generation time;
// file sources are kept in the blob store and extracted immediately.
func SubmitSourceHandler(store quiz.Store, blobs storage.BlobStore, pipe *extract.Pipeline, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		srcType, rawURL := sourceParams(r, maxUpload)
		if srcType == "" {
			writeErr(w, http.StatusBadRequest, "source type is required (url, pdf, docx, image)")
			return
		}

		switch srcType {
		case "url":
			submitURLSource(w, store, rawURL)
		case "pdf", "docx", "word", "image":
			submitFileSource(w, r, store, blobs, pipe)
		default:
			writeErr(w, http.StatusBadRequest, "invalid source type")
		}
	}
}

func sourceParams(r *http.Request, maxUpload int64) (srcType, rawURL string) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err == nil {
			srcType = r.FormValue("type")
			rawURL = r.FormValue("url")
		}
	} else if strings.HasPrefix(ct, "application/json") {
		var body struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}
		if err := decodeJSON(r, &body); err == nil {
			srcType, rawURL = body.Type, body.URL
		}
	}
	if srcType == "" {
		srcType = r.URL.Query().Get("type")
		rawURL = r.URL.Query().Get("url")
	}
	return srcType, rawURL
}

func submitURLSource(w http.ResponseWriter, store quiz.Store, rawURL string) {
	norm, err := extract.NormalizeURL(rawURL)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	title := norm
	if u, err := url.Parse(norm); err == nil && u.Host != "" {
		title = u.Host
	}
	src := quiz.Source{
		ID:        uuid.NewString(),
		Type:      "url",
		Title:     title,
		Content:   norm, // extracted when questions are generated
		Meta:      map[string]string{"url": norm, "is_url": "true"},
		CreatedAt: time.Now().Unix(),
	}
	if err := store.PutSource(src); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, src)
}

func submitFileSource(w http.ResponseWriter, r *http.Request, store quiz.Store, blobs storage.BlobStore, pipe *extract.Pipeline) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeErr(w, http.StatusBadRequest, "no file selected")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	kind, ok := allowedExtensions[ext]
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("file type %q not allowed", ext))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	id := uuid.NewString()
	blobKey := id + "/" + filepath.Base(header.Filename)
	if _, err := blobs.Put(blobKey, bytes.NewReader(data)); err != nil {
		writeErr(w, http.StatusInternalServerError, "failed to store upload: "+err.Error())
		return
	}

	res, err := pipe.Extract(r.Context(), extract.Source{Kind: kind, Data: data, Name: header.Filename})
	if err != nil {
		_ = blobs.Delete(blobKey)
		writeExtractErr(w, err)
		return
	}

	src := quiz.Source{
		ID:      id,
		Type:    string(kind),
		Title:   res.Title,
		Content: res.Text,
		Meta: map[string]string{
			"original_filename": header.Filename,
			"blob_key":          blobKey,
			"strategy":          res.Strategy,
		},
		CreatedAt: time.Now().Unix(),
	}
	if err := store.PutSource(src); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, src)
}

// writeExtractErr surfaces the typed failure kind so the UI can show an
// actionable message ("install tesseract") instead of a generic one.
func writeExtractErr(w http.ResponseWriter, err error) {
	if extract.KindOf(err) == extract.MissingSystemDependency {
		writeErr(w, http.StatusBadRequest, "a required system tool is not installed: "+err.Error())
		return
	}
	writeErr(w, http.StatusBadRequest, "extraction failed: "+err.Error())
}

func ListSourcesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := store.ListSources()
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeList(w, sources, len(sources))
	}
}

func GetSourceHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := store.GetSource(chi.URLParam(r, "sourceID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusOK, src)
	}
}

func DeleteSourceHandler(store quiz.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sourceID")
		src, err := store.GetSource(id)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		if err := store.DeleteSource(id); err != nil {
			writeStoreErr(w, err)
			return
		}
		if key := src.Meta["blob_key"]; key != "" {
			_ = blobs.Delete(key)
		}
		writeData(w, http.StatusOK, map[string]string{"message": "source deleted"})
	}
}
