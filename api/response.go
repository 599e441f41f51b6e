package api

import (
  "encoding/json"
  "errors"
  "net/http"

  "hydra.local/social-aggregator/common"
)

type ResponseHandler struct {
  Writer http.ResponseWriter
}

type Response struct {
  Code    int         `json:"code"`
  Message string      `json:"message,omitempty"`
  Data    interface{} `json:"data,omitempty"`
}

func (h *ResponseHandler) write(status int, response *Response) {
  h.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
  h.Writer.WriteHeader(status)
  json.NewEncoder(h.Writer).Encode(response)
}

func (h *ResponseHandler) Json(data interface{}) {
  h.write(http.StatusOK, &Response{Data: data})
}

func (h *ResponseHandler) Error(status int, code int, message string) {
  h.write(status, &Response{Code: code, Message: message})
}

// Fail maps the error taxonomy onto http statuses.
func (h *ResponseHandler) Fail(err error) {
  var (
    notFound      *common.NotFoundError
    authErr       *common.AuthError
    apiErr        *common.ApiError
    malformed     *common.MalformedResponseError
    configuration *common.ConfigurationError
  )
  switch {
  case errors.As(err, &notFound):
    h.Error(http.StatusNotFound, 1004, err.Error())
  case errors.As(err, &authErr), errors.As(err, &apiErr), errors.As(err, &malformed):
    h.Error(http.StatusBadGateway, 1002, err.Error())
  case errors.As(err, &configuration), errors.Is(err, common.ErrSyncLocked):
    h.Error(http.StatusConflict, 1009, err.Error())
  default:
    common.GetLogger().Errorln("request failed", err)
    h.Error(http.StatusInternalServerError, 500, "server error")
  }
}
