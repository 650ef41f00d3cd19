package controllers

import (
	"net/http"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/internal/media"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

// multipart parse buffer; anything larger spills to a temp file.
const uploadMemoryLimit = 4 << 20

// MediaUpload accepts a multipart form with a "kind" field and a "file"
// part, stores the object and returns its public URL.
func MediaUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		kind, err := enums.ParseMediaKind(r.FormValue("kind"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part required"))
			return
		}
		defer func() { _ = file.Close() }()

		actor := media.Actor{UserID: userID, Role: actorRole(r)}
		item, err := svc.Upload(r.Context(), actor, media.UploadInput{
			Kind:      kind,
			FileName:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Data:      file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromMedia(item))
	}
}

// MediaList pages the caller's own uploads.
func MediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.ListByUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromMediaList(list), NextCursor: next})
	}
}

func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mediaID, err := pathUUID(r, "mediaID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := media.Actor{UserID: userID, Role: actorRole(r)}
		if err := svc.Delete(r.Context(), actor, mediaID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
