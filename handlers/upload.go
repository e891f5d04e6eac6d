package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/Dosada05/football-tournaments/storage"
)

const logoFormField = "logo"

// formLogo достаёт файл логотипа из multipart-формы; при ошибке ответ уже записан.
func formLogo(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxLogoSize+(1<<20))
	if err := r.ParseMultipartForm(storage.MaxLogoSize); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			failedValidationResponse(w, r, map[string]string{logoFormField: storage.ErrFileTooLarge.Error()})
			return nil, false
		}
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return nil, false
	}

	file, header, err := r.FormFile(logoFormField)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return nil, false
	}
	if header.Size > storage.MaxLogoSize {
		file.Close()
		failedValidationResponse(w, r, map[string]string{logoFormField: storage.ErrFileTooLarge.Error()})
		return nil, false
	}
	return file, true
}
