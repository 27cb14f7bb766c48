package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testPhotoData = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/x8AAwMBAp4pWZkAAAAASUVORK5CYII="

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, req)
}

func doMultipart(t *testing.T, ts *httptest.Server, path string, fields map[string]string, filename string, file []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(file); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return send(t, req)
}

func send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected status %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, body)
	}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var body []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return body
}

func ensureSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/sessions", nil)
	expectStatus(t, resp, http.StatusOK)
	return decodeBody(t, resp)["id"].(string)
}

func createPlayer(t *testing.T, ts *httptest.Server, sessionID, name, role string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/players", map[string]string{
		"sessionId": sessionID,
		"name":      name,
		"role":      role,
	})
	expectStatus(t, resp, http.StatusCreated)
	return decodeBody(t, resp)["id"].(string)
}

func createTeam(t *testing.T, ts *httptest.Server, sessionID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/teams", map[string]string{"sessionId": sessionID})
	expectStatus(t, resp, http.StatusCreated)
	return decodeBody(t, resp)
}

func assignPlayer(t *testing.T, ts *httptest.Server, playerID, teamID string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/teams/assign", map[string]string{
		"playerId": playerID,
		"teamId":   teamID,
	})
	expectStatus(t, resp, http.StatusOK)
}

func submitPhoto(t *testing.T, ts *httptest.Server, sessionID, photographerID, targetID string) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/photos", map[string]string{
		"sessionId":      sessionID,
		"photographerId": photographerID,
		"targetPlayerId": targetID,
		"imageData":      testPhotoData,
		"filename":       "shot.png",
	})
}

func names(items []map[string]any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item["name"].(string))
	}
	return out
}
