package infra_test

import (
	"errors"
	"testing"

	"mockupgen/internal/infra"
	"mockupgen/internal/sqlinline"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := infra.ExtractMarker("\n--sql 9e72ea70-99a5-4103-a0a4-a8d501aebb22\nselect 1;\n")
	if err != nil {
		t.Fatalf("ExtractMarker: %v", err)
	}
	if marker != "9e72ea70-99a5-4103-a0a4-a8d501aebb22" || body != "select 1;" {
		t.Fatalf("marker=%q body=%q", marker, body)
	}
	for _, bad := range []string{"", "select 1;", "--sql not-a-uuid\nselect 1;", "--sql 9e72ea70-99a5-4103-a0a4-a8d501aebb22"} {
		if _, _, err := infra.ExtractMarker(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if _, _, err := infra.ExtractMarker("select 1;"); !errors.Is(err, infra.ErrSQLMarker) {
		t.Fatalf("expected ErrSQLMarker, got %v", err)
	}
}

func TestInlineQueriesCarryUniqueMarkers(t *testing.T) {
	queries := []string{
		sqlinline.QEnsureSchema,
		sqlinline.QMockupCreate,
		sqlinline.QMockupGet,
		sqlinline.QMockupClaimNext,
		sqlinline.QMockupSetTaskKey,
		sqlinline.QMockupSetPreviewKey,
		sqlinline.QMockupComplete,
		sqlinline.QMockupFail,
		sqlinline.QMockupRequeue,
		sqlinline.QSelectIntegrationToken,
		sqlinline.QUpsertIntegrationToken,
	}
	seen := map[string]bool{}
	for _, q := range queries {
		marker, _, err := infra.ExtractMarker(q)
		if err != nil {
			t.Fatalf("query %.40q: %v", q, err)
		}
		if seen[marker] {
			t.Fatalf("duplicate marker %s", marker)
		}
		seen[marker] = true
	}
}
