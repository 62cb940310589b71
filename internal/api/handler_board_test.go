package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/ryanbastic/noteboard/internal/board"
)

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	return resp
}

func TestGetBoardReturnsAllCells(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/v1/board")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out BoardResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Cells) != board.BoardSize {
		t.Errorf("cells = %d, want %d", len(out.Cells), board.BoardSize)
	}
	if out.Cells[5].Color != string(board.ColorWhite) {
		t.Errorf("cell 5 default color = %q", out.Cells[5].Color)
	}
}

func TestWriteCellRest(t *testing.T) {
	ts := newTestServer(t)

	resp := putJSON(t, ts.srv.URL+"/v1/board/cells/5", WriteCellBody{
		Text:    "Toplantı 3PM",
		Color:   "orange",
		Account: "ayse",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out CellResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Text != "Toplantı 3PM" || out.Color != "orange" {
		t.Errorf("cell = %+v", out)
	}
	if out.UpdatedBy != "ayse" {
		t.Errorf("updated_by = %q, want ayse", out.UpdatedBy)
	}
	if out.UpdatedAt == nil {
		t.Error("updated_at missing; store must assign it")
	}

	if got := ts.boards.cells[5].Text; got != "Toplantı 3PM" {
		t.Errorf("store not updated: %q", got)
	}
}

func TestWriteCellInvalidKey(t *testing.T) {
	ts := newTestServer(t)

	for _, key := range []int{0, 23, -1} {
		resp := putJSON(t, fmt.Sprintf("%s/v1/board/cells/%d", ts.srv.URL, key), WriteCellBody{
			Text:    "x",
			Color:   "white",
			Account: "ayse",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity && resp.StatusCode != http.StatusBadRequest {
			t.Errorf("key %d: status = %d, want 4xx validation failure", key, resp.StatusCode)
		}
	}
}

func TestWriteCellInvalidColor(t *testing.T) {
	ts := newTestServer(t)

	resp := putJSON(t, ts.srv.URL+"/v1/board/cells/5", WriteCellBody{
		Text:    "x",
		Color:   "magenta",
		Account: "ayse",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity && resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 4xx validation failure", resp.StatusCode)
	}
}
