package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/util"
)

// formBlob reads an optional upload that arrives either as a multipart file or
// as a base64 image data URL in a text field. Absent fields yield nil.
func formBlob(c *gin.Context, field string) ([]byte, *util.HTTPError) {
	fileHeader, err := c.FormFile(field)
	if err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, util.BuildInternalHTTPErr("failed to open upload", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, util.BuildInternalHTTPErr("failed to read upload", err)
		}
		return data, nil
	}
	if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, util.BuildValidationHTTPErr("malformed upload")
	}

	val := c.PostForm(field)
	if val == "" {
		return nil, nil
	}
	data, err := util.DecodeDataURL(val)
	if err != nil {
		return nil, &util.HTTPError{
			Kind:    util.KindValidation,
			Message: "upload is not an image data url",
			Cause:   err,
		}
	}
	return data, nil
}
