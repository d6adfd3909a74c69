package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "kept", Value: "value"},
		StringField{Key: "", Value: "dropped"},
		StringField{Key: "blank", Value: "   "},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "kept" {
		t.Fatalf("unexpected field key: %s", fields[0].Key)
	}
}

func TestMatchFields(t *testing.T) {
	t.Parallel()

	fields := MatchFields("v1", "Asha", 73.45, []string{"python", "django"})

	byKey := make(map[string]zapcore.Field, len(fields))
	for _, f := range fields {
		byKey[f.Key] = f
	}

	if byKey["volunteer_id"].String != "v1" {
		t.Fatalf("unexpected volunteer_id: %q", byKey["volunteer_id"].String)
	}
	if byKey["matching_skills"].String != "python, django" {
		t.Fatalf("unexpected matching_skills: %q", byKey["matching_skills"].String)
	}
	if _, ok := byKey["match_score"]; !ok {
		t.Fatalf("expected match_score field")
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	if got := WithFields(nil); got == nil {
		t.Fatalf("expected non-nil logger")
	}
	if got := WithFields(zap.NewNop(), zap.String("k", "v")); got == nil {
		t.Fatalf("expected non-nil logger with fields")
	}
}
