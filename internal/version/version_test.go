package version

import "testing"

func TestStringBanner(t *testing.T) {
	restore := func(name, ver, commit, built string) {
		Name, Version, GitCommit, BuildTime = name, ver, commit, built
	}
	defer restore(Name, Version, GitCommit, BuildTime)

	tests := []struct {
		name   string
		commit string
		built  string
		want   string
	}{
		{
			name: "bare version",
			want: "suipic v1.2.3",
		},
		{
			name:   "commit is truncated",
			commit: "abcdef0123456789",
			want:   "suipic v1.2.3 (abcdef0)",
		},
		{
			name:   "short commit is kept whole",
			commit: "abc",
			want:   "suipic v1.2.3 (abc)",
		},
		{
			name:  "build time only",
			built: "2026-08-31T10:00:00Z",
			want:  "suipic v1.2.3 (built 2026-08-31T10:00:00Z)",
		},
		{
			name:   "commit and build time",
			commit: "abcdef0123456789",
			built:  "2026-08-31T10:00:00Z",
			want:   "suipic v1.2.3 (abcdef0, built 2026-08-31T10:00:00Z)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore("suipic", "1.2.3", tt.commit, tt.built)
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
