package format

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/sqlgram/dialect"
)

func parse(t *testing.T, src string) *dialect.Result {
	t.Helper()
	res, err := dialect.ANSI().Parse(context.Background(), []byte(src), dialect.WithFile("q.sql"))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestJSONEncoder(t *testing.T) {
	res := parse(t, "select x from")

	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(res); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Match  string `json:"match"`
		Tokens int    `json:"tokens"`
		Tree   struct {
			Kind string `json:"kind"`
		} `json:"tree"`
		Diagnostics []struct {
			File  string `json:"file"`
			Start struct {
				Line int `json:"line"`
			} `json:"start"`
			Expected []string `json:"expected"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("%v:\n%s", err, buf.String())
	}
	if got.Match != "partial" || got.Tokens != 3 {
		t.Errorf("match %s with %d tokens", got.Match, got.Tokens)
	}
	if got.Tree.Kind == "" {
		t.Error("tree has no kind")
	}
	if len(got.Diagnostics) == 0 {
		t.Fatal("no diagnostics")
	}
	if d := got.Diagnostics[0]; d.File != "q.sql" || d.Start.Line != 1 || len(d.Expected) == 0 {
		t.Errorf("diagnostic %+v", d)
	}
}

func TestLineEncoder(t *testing.T) {
	res := parse(t, "select x")

	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(res); err != nil {
		t.Fatal(err)
	}

	var leaves []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			t.Fatalf("short line %q", line)
		}
		if len(fields) == 5 {
			leaves = append(leaves, fields[4])
		}
	}
	if diff := cmp.Diff([]string{`"select"`, `"x"`}, leaves); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEncoder(t *testing.T) {
	for _, name := range []string{"tree", "json", "lines"} {
		if _, err := NewEncoder(name, &bytes.Buffer{}, false); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := NewEncoder("yaml", &bytes.Buffer{}, false); err == nil {
		t.Error("yaml accepted")
	}
}

func TestTreeEncoderPositions(t *testing.T) {
	res := parse(t, "select x")

	var plain, positioned bytes.Buffer
	if err := NewTreeEncoder(&plain, false).Encode(res); err != nil {
		t.Fatal(err)
	}
	if err := NewTreeEncoder(&positioned, true).Encode(res); err != nil {
		t.Fatal(err)
	}
	if plain.String() != res.Root.String()+"\n" {
		t.Errorf("plain tree:\n%s", plain.String())
	}
	if positioned.String() == plain.String() {
		t.Error("positions not included")
	}
}
