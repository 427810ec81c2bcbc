package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"text/tabwriter"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRender(t *testing.T) {
	v := sample{Name: "alice", Count: 2}
	plain := func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Name:\t%s\n", v.Name)
	}

	tests := []struct {
		format string
		plain  func(*tabwriter.Writer)
		want   string
	}{
		{"json", plain, "\"name\": \"alice\""},
		{"yaml", plain, "name: alice\n"},
		{"plain", plain, "Name:  alice\n"},
		{"table", plain, "Name:  alice\n"},
		{"plain", nil, "\"count\": 2"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			output = tt.format
			defer func() { output = "" }()

			var buf bytes.Buffer
			if err := render(&buf, v, tt.plain); err != nil {
				t.Fatalf("render() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("render() = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	output = "xml"
	defer func() { output = "" }()

	if err := render(&bytes.Buffer{}, sample{}, nil); err == nil {
		t.Error("render() should reject unknown formats")
	}
}

func TestDone(t *testing.T) {
	defer func() { output = "" }()

	output = "plain"
	var buf bytes.Buffer
	done(&buf, "Token accepted")
	if buf.String() != "Token accepted\n" {
		t.Errorf("plain done() = %q", buf.String())
	}

	output = "json"
	buf.Reset()
	done(&buf, "Token accepted")
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json done() = %q: %v", buf.String(), err)
	}
	if got["ok"] != true || got["message"] != "Token accepted" {
		t.Errorf("json done() = %v", got)
	}

	output = "yaml"
	buf.Reset()
	done(&buf, "Token accepted")
	if !strings.Contains(buf.String(), "ok: true") {
		t.Errorf("yaml done() = %q", buf.String())
	}
}

func TestRwx(t *testing.T) {
	tests := []struct {
		r, w, x bool
		want    string
	}{
		{false, false, false, "---"},
		{true, false, false, "r--"},
		{true, true, false, "rw-"},
		{true, true, true, "rwx"},
		{false, false, true, "--x"},
	}
	for _, tt := range tests {
		if got := rwx(tt.r, tt.w, tt.x); got != tt.want {
			t.Errorf("rwx(%v, %v, %v) = %q, want %q", tt.r, tt.w, tt.x, got, tt.want)
		}
	}
	if yesNo(true) != "yes" || yesNo(false) != "no" {
		t.Error("yesNo() mismatch")
	}
}

func TestUsersListOutputFormats(t *testing.T) {
	_, url := newAdminAPI(t, "good", "")

	res := execute(t, "", "--server", url, "--token", "good", "-o", "yaml", "users", "list")
	if res.err != nil {
		t.Fatalf("users list error = %v", res.err)
	}
	if !strings.Contains(res.out, "username: alice") {
		t.Errorf("yaml output = %q", res.out)
	}

	res = execute(t, "", "--server", url, "--token", "good", "-o", "json", "users", "list")
	if res.err != nil {
		t.Fatalf("users list error = %v", res.err)
	}
	var users []map[string]any
	if err := json.Unmarshal([]byte(res.out), &users); err != nil || len(users) != 1 {
		t.Errorf("json output = %q (%v)", res.out, err)
	}
}
