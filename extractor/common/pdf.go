package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dslipak/pdf"
	lpdf "github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// ExtractPages returns the plain text of each page, rows separated by newlines.
// The row-based reader is tried first; when it fails or sees no text at all the
// page plain-text reader is used instead.
func ExtractPages(reader io.Reader) ([]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	pages, rowErr := pagesByRow(data)
	if rowErr == nil && hasText(pages) {
		return pages, nil
	}
	if rowErr != nil {
		logrus.WithError(rowErr).Debug("row extraction failed, trying plain text")
	}

	plain, plainErr := pagesByPlainText(data)
	if plainErr == nil && hasText(plain) {
		return plain, nil
	}

	if rowErr != nil {
		return nil, rowErr
	}
	if plainErr != nil {
		return nil, plainErr
	}
	return nil, errors.New("document contains no extractable text")
}

func ExtractPagesFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractPages(file)
}

func pagesByRow(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	pages = make([]string, 0, numPages)
	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			logrus.WithError(err).WithField("page", no).Warn("could not read page text")
			pages = append(pages, "")
			continue
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var builder strings.Builder
			for i, text := range row.Content {
				if i > 0 {
					builder.WriteByte(' ')
				}
				builder.WriteString(text.S)
			}
			if line := strings.TrimSpace(builder.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages, nil
}

func pagesByPlainText(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf plain text reader crashed: %v", r)
		}
	}()

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	pages = make([]string, 0, numPages)
	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		fonts := make(map[string]*lpdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
