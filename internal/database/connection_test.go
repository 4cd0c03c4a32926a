package database

import "testing"

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "postgres", name: "postgres"},
		{driver: "", name: "postgres"},
		{driver: "mysql", name: "mysql"},
		{driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		d, err := dialectorFor(tt.driver, "dsn")
		if tt.wantErr {
			if err == nil {
				t.Errorf("dialectorFor(%q) expected error", tt.driver)
			}
			continue
		}
		if err != nil {
			t.Fatalf("dialectorFor(%q) unexpected error: %v", tt.driver, err)
		}
		if d.Name() != tt.name {
			t.Errorf("dialectorFor(%q).Name() = %q, want %q", tt.driver, d.Name(), tt.name)
		}
	}
}
