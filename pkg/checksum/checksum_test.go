package checksum

import (
	"testing"
)

func sampleState() map[string]any {
	return map[string]any{
		"player": map[string]any{
			"name":  "Sawyer",
			"level": float64(7),
			"gold":  float64(340),
		},
		"inventory": []any{
			map[string]any{"id": "iron_sword", "qty": float64(1)},
			map[string]any{"id": "potion", "qty": float64(5)},
		},
		"totalPlayTime": float64(86400),
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(sampleState())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(sampleState())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a != b {
		t.Errorf("Generate() not deterministic: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Generate() length = %d, want 64 hex chars", len(a))
	}
}

func TestGenerate_KeyOrderInsensitive(t *testing.T) {
	a := map[string]any{"gold": float64(1), "level": float64(2)}
	b := map[string]any{"level": float64(2), "gold": float64(1)}

	sa, err := Generate(a)
	if err != nil {
		t.Fatalf("Generate(a) error = %v", err)
	}
	sb, err := Generate(b)
	if err != nil {
		t.Fatalf("Generate(b) error = %v", err)
	}
	if sa != sb {
		t.Errorf("checksums differ for structurally equal objects")
	}
}

func TestVerify_SingleFieldSensitivity(t *testing.T) {
	state := sampleState()
	sum, err := Generate(state)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !Verify(sampleState(), sum) {
		t.Fatal("Verify() = false for untouched payload")
	}

	// Flip every primitive field one at a time; each flip must be detected.
	mutations := []func(m map[string]any){
		func(m map[string]any) { m["player"].(map[string]any)["name"] = "Imposter" },
		func(m map[string]any) { m["player"].(map[string]any)["level"] = float64(99) },
		func(m map[string]any) { m["player"].(map[string]any)["gold"] = float64(341) },
		func(m map[string]any) { m["totalPlayTime"] = float64(0) },
		func(m map[string]any) {
			m["inventory"].([]any)[0].(map[string]any)["qty"] = float64(2)
		},
	}

	for i, mutate := range mutations {
		tampered := sampleState()
		mutate(tampered)
		if Verify(tampered, sum) {
			t.Errorf("mutation %d not detected by Verify()", i)
		}
	}
}

func TestVerify_NeverPanicsOnGarbage(t *testing.T) {
	if Verify(sampleState(), "not-a-checksum") {
		t.Error("Verify() = true for garbage checksum")
	}
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	if Verify(cyclic, "deadbeef") {
		t.Error("Verify() = true for unserializable value")
	}
}

func TestGenerate_StringAsIs(t *testing.T) {
	s1, err := Generate(`{"a":1}`)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	s2, err := Generate(`{"a":1}`)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if s1 != s2 {
		t.Error("string digests differ")
	}
	s3, _ := Generate(`{"a":2}`)
	if s1 == s3 {
		t.Error("different strings produced same digest")
	}
}

func TestFingerprint_ChangesWithPayload(t *testing.T) {
	f1, err := Fingerprint(sampleState())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	f2, err := Fingerprint(sampleState())
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if f1 != f2 {
		t.Error("Fingerprint() not deterministic")
	}

	changed := sampleState()
	changed["totalPlayTime"] = float64(99999)
	f3, err := Fingerprint(changed)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if f1 == f3 {
		t.Error("Fingerprint() did not change with payload")
	}
}
