package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Messages sent back to clients by the books endpoints.
const (
	MsgBookCreated           = "Buku berhasil ditambahkan"
	MsgBookUpdated           = "Buku berhasil diperbarui"
	MsgBookDeleted           = "Buku berhasil dihapus"
	MsgBookNotFound          = "Buku tidak ditemukan"
	MsgCreateMissingName     = "Gagal menambahkan buku. Mohon isi nama buku"
	MsgCreateReadPageTooHigh = "Gagal menambahkan buku. readPage tidak boleh lebih besar dari pageCount"
	MsgCreateInvalidPayload  = "Gagal menambahkan buku. Format payload tidak valid"
	MsgCreateFailed          = "Catatan gagal ditambahkan"
	MsgUpdateMissingName     = "Gagal memperbarui buku. Mohon isi nama buku"
	MsgUpdateReadPageTooHigh = "Gagal memperbarui buku. readPage tidak boleh lebih besar dari pageCount"
	MsgUpdateInvalidPayload  = "Gagal memperbarui buku. Format payload tidak valid"
	MsgUpdateNotFound        = "Gagal memperbarui buku. Id tidak ditemukan"
	MsgUpdateFailed          = "Gagal memperbarui buku"
	MsgDeleteNotFound        = "Buku gagal dihapus. Id tidak ditemukan"
	MsgDeleteFailed          = "Buku gagal dihapus"
	MsgInternalError         = "Terjadi kegagalan pada server"
	MsgMaintenanceMode       = "Layanan sedang dalam pemeliharaan"
	MsgRateLimitExceeded     = "Terlalu banyak permintaan. Silakan coba lagi nanti"
	MsgEndpointNotFound      = "Endpoint tidak ditemukan"
	MsgMethodNotAllowed      = "Metode tidak diizinkan"
	MsgRequestTimeout        = "Waktu pemrosesan permintaan habis"
)

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		StatusResponse{
			RequestID: requestID,
			Status:    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			Message:   "Hello. Bookshelf api is available. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// send writes the response envelope and logs the failure to do so.
func (api *APIHandler) send(ctx context.Context, logger *zap.Logger, w http.ResponseWriter, resp *APIResponse) {
	if err := WriteResponse(ctx, w, resp); err != nil {
		logger.Error("failed to send response", zap.Int("response.code", resp.Code()), zap.Error(err))
	}
}

// CreateBook godoc
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book  body      BookPayload  true  "Book to add"
// @Success      201   {object}  APIResponse
// @Failure      400   {object}  APIResponse
// @Failure      500   {object}  APIResponse
// @Router       /books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	logger := GetLoggerFromContext(ctx, api.logger)

	var payload BookPayload
	if err := DecodeBookRequestBody(r, &payload); err != nil {
		logger.Error("failed to create book", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusBadRequest, MsgCreateInvalidPayload))
		return
	}

	id, err := api.bookService.Create(ctx, payload)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingName):
		logger.Info("book creation rejected", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusBadRequest, MsgCreateMissingName))
		return
	case errors.Is(err, ErrReadPageExceedsPageCount):
		logger.Info("book creation rejected", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusBadRequest, MsgCreateReadPageTooHigh))
		return
	default:
		logger.Error("failed to create book", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusInternalServerError, MsgCreateFailed))
		return
	}

	logger.Info("success to create book", zap.String("book.id", id))
	api.send(ctx, logger, w, NewAPIResponse(http.StatusCreated, MsgBookCreated, map[string]string{"bookId": id}))
}

// GetAllBooks godoc
// @Summary      List books
// @Tags         books
// @Produce      json
// @Param        name      query     string  false  "Case-insensitive part of the name"
// @Param        reading   query     string  false  "1 for books being read, 0 otherwise"
// @Param        finished  query     string  false  "1 for finished books, 0 otherwise"
// @Success      200       {object}  APIResponse
// @Router       /books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	logger := GetLoggerFromContext(ctx, api.logger)
	// listing is the only endpoint whose response grows with the collection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(api.clock.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil {
		logger.Debug("http: failed to update the write deadline", zap.Error(err))
	}

	books := api.bookService.List(ctx, ParseBookFilters(r.URL.Query()))
	logger.Info("success to get all books", zap.Int("books.total", len(books)))
	api.send(ctx, logger, w, NewAPIResponse(http.StatusOK, "", map[string]interface{}{"books": books}))
}

// GetOneBook godoc
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  APIResponse
// @Failure      404  {object}  APIResponse
// @Router       /books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")
	logger := GetLoggerFromContext(ctx, api.logger).With(zap.String("book.id", id))
	if !api.idsHandler.IsValid(id, BookIDPrefix) {
		logger.Info("book id provided is not valid")
		api.send(ctx, logger, w, NewAPIError(http.StatusNotFound, MsgBookNotFound))
		return
	}

	book, err := api.bookService.GetOne(ctx, id)
	if errors.Is(err, ErrBookNotFound) {
		logger.Info("book does not exist")
		api.send(ctx, logger, w, NewAPIError(http.StatusNotFound, MsgBookNotFound))
		return
	}
	if err != nil {
		logger.Error("failed to get book", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusInternalServerError, MsgInternalError))
		return
	}
	logger.Info("success to get book")
	api.send(ctx, logger, w, NewAPIResponse(http.StatusOK, "", map[string]interface{}{"book": book}))
}

// UpdateBook godoc
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Book ID"
// @Param        book  body      BookPayload  true  "New book content"
// @Success      200   {object}  APIResponse
// @Failure      400   {object}  APIResponse
// @Failure      404   {object}  APIResponse
// @Router       /books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")
	logger := GetLoggerFromContext(ctx, api.logger).With(zap.String("book.id", id))
	if !api.idsHandler.IsValid(id, BookIDPrefix) {
		logger.Info("book id provided is not valid")
		api.send(ctx, logger, w, NewAPIError(http.StatusNotFound, MsgUpdateNotFound))
		return
	}

	var payload BookPayload
	if err := DecodeBookRequestBody(r, &payload); err != nil {
		logger.Error("failed to update book", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusBadRequest, MsgUpdateInvalidPayload))
		return
	}

	_, err := api.bookService.Update(ctx, id, payload)
	switch {
	case err == nil:
	case errors.Is(err, ErrBookNotFound):
		logger.Info("book does not exist")
		api.send(ctx, logger, w, NewAPIError(http.StatusNotFound, MsgUpdateNotFound))
		return
	case errors.Is(err, ErrMissingName):
		logger.Info("book update rejected", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusBadRequest, MsgUpdateMissingName))
		return
	case errors.Is(err, ErrReadPageExceedsPageCount):
		logger.Info("book update rejected", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusBadRequest, MsgUpdateReadPageTooHigh))
		return
	default:
		logger.Error("failed to update book", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusInternalServerError, MsgUpdateFailed))
		return
	}

	logger.Info("success to update book")
	api.send(ctx, logger, w, NewAPIResponse(http.StatusOK, MsgBookUpdated, nil))
}

// DeleteOneBook godoc
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  APIResponse
// @Failure      404  {object}  APIResponse
// @Router       /books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id := ps.ByName("id")
	logger := GetLoggerFromContext(ctx, api.logger).With(zap.String("book.id", id))
	if !api.idsHandler.IsValid(id, BookIDPrefix) {
		logger.Info("book id provided is not valid")
		api.send(ctx, logger, w, NewAPIError(http.StatusNotFound, MsgDeleteNotFound))
		return
	}

	err := api.bookService.Delete(ctx, id)
	if errors.Is(err, ErrBookNotFound) {
		logger.Info("book does not exist")
		api.send(ctx, logger, w, NewAPIError(http.StatusNotFound, MsgDeleteNotFound))
		return
	}
	if err != nil {
		logger.Error("failed to delete book", zap.Error(err))
		api.send(ctx, logger, w, NewAPIError(http.StatusInternalServerError, MsgDeleteFailed))
		return
	}
	logger.Info("success to delete book")
	api.send(ctx, logger, w, NewAPIResponse(http.StatusOK, MsgBookDeleted, nil))
}
