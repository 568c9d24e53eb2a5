/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := write(&buf, "text"); err != nil {
		t.Fatalf("write() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "ack997 ") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if !strings.Contains(buf.String(), "built-in codes") {
		t.Errorf("expected code count in %q", buf.String())
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := write(&buf, "json"); err != nil {
		t.Fatalf("write() error = %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"version", "goVersion", "codes"} {
		if _, ok := info[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := write(&bytes.Buffer{}, "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
