/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package load_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"bennypowers.dev/ack997/ack"
	"bennypowers.dev/ack997/codes"
	"bennypowers.dev/ack997/internal/mapfs"
	"bennypowers.dev/ack997/load"
	"bennypowers.dev/ack997/testutil"
	"bennypowers.dev/ack997/validator"
	"bennypowers.dev/ack997/x12"
)

type mockFetcher struct {
	content []byte
	err     error
	called  bool
	url     string
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.called = true
	m.url = url
	if m.err != nil {
		return nil, m.err
	}
	return m.content, nil
}

func projectFS(t *testing.T) *mapfs.MapFileSystem {
	t.Helper()
	return testutil.NewFixtureFS(t, "fixtures", "/project/edi")
}

func TestParse_Scenario(t *testing.T) {
	result, err := load.Parse(testutil.LoadFixtureFile(t, "fixtures/scenario.edi"), load.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if result.Status != ack.Rejected {
		t.Errorf("expected REJECTED, got %s", result.Status)
	}
	if result.Counts.Errors != 2 {
		t.Fatalf("expected 2 errors, got %d", result.Counts.Errors)
	}

	errs := result.Interchange.Groups[0].TransactionSets[0].Errors
	if errs[0].Description != "Mandatory data element missing" {
		t.Errorf("unexpected element description %q", errs[0].Description)
	}
	if errs[1].Description != "One or More Segments in Error" {
		t.Errorf("unexpected transaction set description %q", errs[1].Description)
	}
}

func TestParse_StructuralErrorReturnsPartialResult(t *testing.T) {
	result, err := load.Parse(testutil.LoadFixtureFile(t, "fixtures/structural_second_group.edi"), load.Options{})
	if !errors.Is(err, x12.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected a partial result")
	}
	if len(result.Interchange.Groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(result.Interchange.Groups))
	}
	if result.Status != ack.Accepted {
		t.Errorf("expected earlier group to be ACCEPTED, got %s", result.Status)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		fixture  string
		sentinel error
	}{
		{"fixtures/unterminated.edi", x12.ErrTokenization},
		{"fixtures/iea_mismatch.edi", x12.ErrMalformedEnvelope},
		{"fixtures/no_isa.edi", x12.ErrMalformedEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			result, err := load.Parse(testutil.LoadFixtureFile(t, tt.fixture), load.Options{})
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
		})
	}
}

func TestParse_CustomRules(t *testing.T) {
	rules := validator.DefaultRules()
	rules.PartialCodes = []string{"E"}
	rules.RejectedCodes = []string{"P"}

	result, err := load.Parse(testutil.LoadFixtureFile(t, "fixtures/v5010.edi"), load.Options{Rules: &rules})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if result.Status != ack.Rejected {
		t.Errorf("expected AK9 P to be rejected by custom rules, got %s", result.Status)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	result, err := load.Load(t.Context(), "edi/partial.edi", load.Options{
		Root: "/project",
		FS:   projectFS(t),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Status != ack.PartiallyAccepted {
		t.Errorf("expected PARTIALLY_ACCEPTED, got %s", result.Status)
	}
}

func TestLoad_ConfigCodesAndRules(t *testing.T) {
	mfs := projectFS(t)
	mfs.AddFile("/project/.config/ack997.yaml", `
codes: ./partner-codes.yaml
checkCounts: false
classification:
  accepted: [A, E]
`, 0644)
	mfs.AddFile("/project/partner-codes.yaml", `
transaction_set:
  - code: "5"
    description: Partner says segments are wrong
`, 0644)

	result, err := load.Load(t.Context(), "/project/edi/partial.edi", load.Options{
		Root: "/project",
		FS:   mfs,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Status != ack.Accepted {
		t.Errorf("expected configured classification to accept E, got %s", result.Status)
	}
	desc := result.Interchange.Groups[0].TransactionSets[0].Errors[0].Description
	if desc != "Partner says segments are wrong" {
		t.Errorf("expected partner description, got %q", desc)
	}

	result, err = load.Load(t.Context(), "edi/count_mismatch.edi", load.Options{Root: "/project", FS: mfs})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected count checks disabled by config, got %v", result.Issues)
	}
}

func TestLoad_OptionsOverrideConfig(t *testing.T) {
	mfs := projectFS(t)
	mfs.AddFile("/project/.config/ack997.yaml", "codes: ./missing.yaml\n", 0644)

	table := codes.Default()
	_, err := load.Load(t.Context(), "edi/accepted.edi", load.Options{
		Root:  "/project",
		FS:    mfs,
		Codes: table,
	})
	if err != nil {
		t.Fatalf("expected explicit code table to skip config codes, got %v", err)
	}

	_, err = load.Load(t.Context(), "edi/accepted.edi", load.Options{Root: "/project", FS: mfs})
	if err == nil {
		t.Fatal("expected error for missing config code table")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := load.Load(t.Context(), "edi/nonexistent.edi", load.Options{
		Root: "/project",
		FS:   projectFS(t),
	})
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoad_ParseErrorKeepsResult(t *testing.T) {
	result, err := load.Load(t.Context(), "edi/structural_second_group.edi", load.Options{
		Root: "/project",
		FS:   projectFS(t),
	})
	if !errors.Is(err, x12.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if result == nil || len(result.Interchange.Groups) != 1 {
		t.Errorf("expected partial result, got %+v", result)
	}
}

func TestLoad_Remote(t *testing.T) {
	fetcher := &mockFetcher{content: testutil.LoadFixtureFile(t, "fixtures/accepted.edi")}
	result, err := load.Load(t.Context(), "https://edi.example.com/997/latest.edi", load.Options{
		Root:    "/project",
		FS:      projectFS(t),
		Fetcher: fetcher,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !fetcher.called || fetcher.url != "https://edi.example.com/997/latest.edi" {
		t.Errorf("expected fetcher call, got called=%v url=%q", fetcher.called, fetcher.url)
	}
	if !result.Valid {
		t.Errorf("expected valid result, got %s", result.Status)
	}
}

func TestLoad_LocalFileNeverTriggersNetwork(t *testing.T) {
	fetcher := &mockFetcher{}
	_, err := load.Load(t.Context(), "edi/accepted.edi", load.Options{
		Root:    "/project",
		FS:      projectFS(t),
		Fetcher: fetcher,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fetcher.called {
		t.Error("expected fetcher not to be called for local files")
	}
}

func TestLoad_RemoteWithoutFetcher(t *testing.T) {
	_, err := load.Load(t.Context(), "https://edi.example.com/997.edi", load.Options{
		Root: "/project",
		FS:   projectFS(t),
	})
	if !errors.Is(err, load.ErrNoFetcher) {
		t.Fatalf("expected ErrNoFetcher, got %v", err)
	}
}

func TestLoad_RemoteError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	_, err := load.Load(t.Context(), "https://edi.example.com/997.edi", load.Options{
		Root:    "/project",
		FS:      projectFS(t),
		Fetcher: &mockFetcher{err: fetchErr},
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestLoad_MaxSize(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		maxSize int64
		fetcher *mockFetcher
		wantErr bool
	}{
		{"local within limit", "edi/accepted.edi", 0, nil, false},
		{"local over limit", "edi/accepted.edi", 64, nil, true},
		{"remote over limit", "https://edi.example.com/997.edi", 64, &mockFetcher{}, true},
	}
	accepted := testutil.LoadFixtureFile(t, "fixtures/accepted.edi")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := load.Options{Root: "/project", FS: projectFS(t), MaxSize: tt.maxSize}
			if tt.fetcher != nil {
				tt.fetcher.content = accepted
				opts.Fetcher = tt.fetcher
			}
			_, err := load.Load(t.Context(), tt.spec, opts)
			if tt.wantErr != errors.Is(err, load.ErrTooLarge) {
				t.Errorf("Load() error = %v, want ErrTooLarge: %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	fixtures := []string{"accepted.edi", "scenario.edi", "mixed_groups.edi", "v5010.edi", "structural_second_group.edi"}
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			content := testutil.LoadFixtureFile(t, "fixtures/"+name)
			first, firstErr := load.Parse(content, load.Options{})
			second, secondErr := load.Parse(content, load.Options{})
			if !reflect.DeepEqual(first, second) {
				t.Errorf("results differ between runs:\n%+v\n%+v", first, second)
			}
			if (firstErr == nil) != (secondErr == nil) || (firstErr != nil && firstErr.Error() != secondErr.Error()) {
				t.Errorf("errors differ between runs: %v, %v", firstErr, secondErr)
			}
		})
	}
}

func TestParse_StructuralErrorKeepsClosedSet(t *testing.T) {
	const data = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *230101*1200*U*00401*000000001*0*P*>~" +
		"GS*FA*SENDER*RECEIVER*20230101*1200*1*X*004010~" +
		"ST*997*0001~AK1*PO*1234~AK2*850*0001~AK5*A~AK9*A*1*1*1~SE*6*0001~" +
		"ST*997*0002~AK1*PO*1235~AK2*850*0002~AK4*1*66*1~AK5*R~AK9*R*1*1*0~SE*7*0002~" +
		"GE*2*1~IEA*1*000000001~"

	result, err := load.Parse([]byte(data), load.Options{})
	if !errors.Is(err, x12.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected a partial result")
	}
	if result.Counts.Groups != 1 || result.Counts.TransactionSets != 1 {
		t.Errorf("expected the closed 997 to be kept, got %+v", result.Counts)
	}
	refs := result.Acknowledgments()
	if len(refs) != 1 || refs[0].ControlNumber != "0001" {
		t.Errorf("expected transaction set 0001, got %+v", refs)
	}
}

func TestParse_ScenarioLiteralElements(t *testing.T) {
	// AK4 carries its code in AK4-03 and AK5 lists no syntax codes, so only
	// one element-level error with an empty code is reported.
	const data = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *230101*1200*U*00401*000000001*0*P*>~" +
		"GS*PO*SENDER*RECEIVER*20230101*1200*1234*X*004010~" +
		"ST*997*5678~AK1*PO*1234~AK2*850*5678~AK3*N1*2*1~AK4**1~AK5*R~AK9*R*1*1*0~SE*8*5678~" +
		"GE*1*1234~IEA*1*000000001~"

	result, err := load.Parse([]byte(data), load.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if result.Status != ack.Rejected || result.Valid {
		t.Errorf("expected REJECTED, got %s valid=%v", result.Status, result.Valid)
	}
	refs := result.Acknowledgments()
	if len(refs) != 1 || refs[0].TransactionSetID != "850" || refs[0].ControlNumber != "5678" || refs[0].Status != ack.Rejected {
		t.Fatalf("unexpected transaction sets %+v", refs)
	}

	errs := result.Interchange.Groups[0].TransactionSets[0].Errors
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	e := errs[0]
	if e.Level != ack.LevelElement || e.SegmentID != "N1" || e.Code != "" || e.Description != validator.UnknownCode {
		t.Errorf("unexpected error detail %+v", e)
	}
	if e.ElementPosition != nil || e.ElementReference == nil || *e.ElementReference != 1 {
		t.Errorf("expected AK4-02 reference 1 without a position, got %+v", e)
	}

	unmapped := false
	for _, issue := range result.Warnings() {
		if issue.Kind == ack.KindUnmappedCode {
			unmapped = true
		}
	}
	if !unmapped {
		t.Error("expected an unmapped code warning")
	}
}
