// Package main provides a CLI tool to upload a registry document (PDF, CSV,
// XLSX) to the ingestion endpoint.
//
// Usage:
//
//	go run ./scripts/upload -file /path/to/registre.csv -api-url http://localhost:8080 -token SESSION_TOKEN
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func main() {
	filePath := flag.String("file", "", "Path to the document to upload (required)")
	apiURL := flag.String("api-url", "http://localhost:8080", "Base URL of the API")
	token := flag.String("token", "", "Session token (required)")
	flag.Parse()

	if *filePath == "" || *token == "" {
		flag.Usage()
		os.Exit(2)
	}

	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(*filePath))]
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported file extension: %s\n", filepath.Ext(*filePath))
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read file: %v\n", err)
		os.Exit(1)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(*filePath)))
	header.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build request: %v\n", err)
		os.Exit(1)
	}
	if _, err := part.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "build request: %v\n", err)
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "build request: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*apiURL, "/")+"/v1/documents", &body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+*token)

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s\n%s\n", resp.Status, respBody)

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
