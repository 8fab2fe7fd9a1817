package logfields

import (
	"errors"
	"testing"
)

func TestHelpers(t *testing.T) {
	if a := Path("posts/a.md"); a.Key != KeyPath || a.Value.String() != "posts/a.md" {
		t.Errorf("Path attr = %v", a)
	}
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Errorf("Count attr = %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("Error(nil) = %v", a)
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("Error attr = %v", a)
	}
}
