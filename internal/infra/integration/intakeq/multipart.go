package intakeq

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// NewBoundary derives a multipart boundary from the given instant so two
// uploads in the same process never share one.
func NewBoundary(now time.Time) string {
	return fmt.Sprintf("---Boundary%d", now.UnixNano())
}

// EncodeFile builds a single-part multipart/form-data body holding one file.
// The output is deterministic for a given boundary:
//
//	--<boundary>\r\n
//	Content-Disposition: form-data; name="<field>"; filename="<file>"\r\n
//	Content-Type: <type>\r\n
//	\r\n
//	<data>\r\n
//	--<boundary>--\r\n
func EncodeFile(boundary, fieldName, fileName, contentType string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, fmt.Errorf("invalid boundary: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType is the request header value matching a body from EncodeFile.
func ContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}
