package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "expected 'languages', 'audio', 'video' or 'version'")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "languages":
		fs := flag.NewFlagSet("languages", flag.ExitOnError)
		addr := fs.String("addr", "http://localhost:8080", "Daemon base URL")
		fs.Parse(os.Args[2:])
		if err := runLanguages(*addr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "audio", "video":
		kind := os.Args[1]
		fs := flag.NewFlagSet(kind, flag.ExitOnError)
		addr := fs.String("addr", "http://localhost:8080", "Daemon base URL")
		file := fs.String("file", "", "Path to the media file")
		source := fs.String("from", "", "Source language display name")
		target := fs.String("to", "", "Target language display name")
		out := fs.String("out", "", "Where to write the translated speech (optional)")
		fs.Parse(os.Args[2:])
		if *file == "" || *source == "" || *target == "" {
			fmt.Fprintln(os.Stderr, "-file, -from and -to are required")
			os.Exit(2)
		}
		if err := runTranslate(*addr, kind, *file, *source, *target, *out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func runLanguages(addr string) error {
	resp, err := http.Get(addr + "/v1/languages")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var body struct {
		Languages []string `json:"languages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	for _, name := range body.Languages {
		fmt.Println(name)
	}
	return nil
}

func runTranslate(addr, kind, file, source, target, out string) error {
	payload, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("source_lang", source); err != nil {
		return err
	}
	if err := writer.WriteField("target_lang", target); err != nil {
		return err
	}
	part, err := writer.CreateFormFile(kind, filepath.Base(file))
	if err != nil {
		return err
	}
	if _, err := part.Write(payload); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	resp, err := http.Post(addr+"/v1/translate-"+kind, writer.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			ErrorMessage string `json:"error_message"`
		}
		if err := json.Unmarshal(raw, &failure); err == nil && failure.ErrorMessage != "" {
			return fmt.Errorf("request failed: %s", failure.ErrorMessage)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var result struct {
		RequestID      string `json:"request_id"`
		OriginalText   string `json:"original_text"`
		TranslatedText string `json:"translated_text"`
		AudioBase64    string `json:"audio_base64"`
		SpeechError    string `json:"speech_error"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("request:    %s\n", result.RequestID)
	fmt.Printf("original:   %s\n", result.OriginalText)
	fmt.Printf("translated: %s\n", result.TranslatedText)
	if result.SpeechError != "" {
		fmt.Printf("speech:     failed (%s)\n", result.SpeechError)
		return nil
	}
	if out == "" || result.AudioBase64 == "" {
		return nil
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioBase64)
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}
	if err := os.WriteFile(out, audio, 0o644); err != nil {
		return err
	}
	fmt.Printf("speech:     %s (%d bytes)\n", out, len(audio))
	return nil
}
