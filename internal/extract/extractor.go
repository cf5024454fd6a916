// Package extract converts uploaded registry files (PDF, XLSX, CSV) into
// ordered text chunks for the ingestion pipeline.
package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/xuri/excelize/v2"

	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/models"
)

// Supported media types, matched against the upload's declared Content-Type.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeCSV  = "text/csv"
	MediaTypeXLS  = "application/vnd.ms-excel"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// minParagraphChars is the trimmed-length threshold below which a PDF
// paragraph is discarded. Running headers, footers, and page numbers fall
// under it; registry entries do not.
const minParagraphChars = 50

// rowChunkPrefix renders a spreadsheet row as one descriptive sentence, the
// form the registries were written in before digitization.
const rowChunkPrefix = "Enregistrement du registre"

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Supported reports whether the extractor handles the given media type.
func Supported(mediaType string) bool {
	switch mediaType {
	case MediaTypePDF, MediaTypeCSV, MediaTypeXLS, MediaTypeXLSX:
		return true
	default:
		return false
	}
}

// Chunks extracts the ordered, non-empty text chunks from the file content.
// PDF documents are split into paragraphs; tabular documents yield exactly
// one chunk per data row, unfiltered. Extraction is deterministic: a failure
// here is terminal for the upload and is never retried.
func Chunks(data []byte, mediaType, filename string) ([]models.Chunk, error) {
	switch mediaType {
	case MediaTypePDF:
		return pdfChunks(data, filename)
	case MediaTypeCSV:
		return csvChunks(data, filename)
	case MediaTypeXLS, MediaTypeXLSX:
		return xlsxChunks(data, mediaType, filename)
	default:
		return nil, auraerrors.NewUnsupportedFormatError(mediaType)
	}
}

func pdfChunks(data []byte, filename string) ([]models.Chunk, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	text := strings.Join(pages, "\n\n")
	if strings.TrimSpace(text) == "" {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}

	chunks := paragraphChunks(text, filename)
	if len(chunks) == 0 {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}

	return chunks, nil
}

// paragraphChunks splits the text on blank-line boundaries and keeps only
// paragraphs whose trimmed length exceeds minParagraphChars.
func paragraphChunks(text, source string) []models.Chunk {
	var chunks []models.Chunk
	for _, paragraph := range paragraphSplit.Split(text, -1) {
		if len(strings.TrimSpace(paragraph)) <= minParagraphChars {
			continue
		}
		chunks = append(chunks, models.Chunk{Text: paragraph, Source: source})
	}

	return chunks
}

func csvChunks(data []byte, filename string) ([]models.Chunk, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, auraerrors.NewEmptyDocumentError(filename)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}

	return rowChunks(headers, rows, filename), nil
}

// zipMagic is the local-file-header signature every OOXML workbook starts
// with. Legacy BIFF .xls files use an OLE compound container instead, which
// excelize cannot read.
var zipMagic = []byte("PK\x03\x04")

func xlsxChunks(data []byte, mediaType, filename string) ([]models.Chunk, error) {
	if mediaType == MediaTypeXLS && !bytes.HasPrefix(data, zipMagic) {
		return nil, auraerrors.NewUnsupportedFormatError(mediaType)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		return nil, auraerrors.NewEmptyDocumentError(filename)
	}

	return rowChunks(rows[0], rows[1:], filename), nil
}

// rowChunks renders every data row as exactly one descriptive-sentence chunk.
// Rows are never filtered: each registry row is one retrievable record.
func rowChunks(headers []string, rows [][]string, source string) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(rows))
	for _, row := range rows {
		var fields []string
		for i, value := range row {
			header := fmt.Sprintf("colonne %d", i+1)
			if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
				header = strings.TrimSpace(headers[i])
			}
			fields = append(fields, header+": "+strings.TrimSpace(value))
		}

		chunks = append(chunks, models.Chunk{
			Text:   rowChunkPrefix + ": " + strings.Join(fields, ", "),
			Source: source,
		})
	}

	return chunks
}
