package metadata

import (
	"context"
	"testing"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantFileName string
		wantYear     int
		wantCategory string
	}{
		{
			name:         "well-formed filename",
			path:         "dataset/02_Curriculum/2024_Curriculum_CS.pdf",
			wantFileName: "2024_Curriculum_CS.pdf",
			wantYear:     2024,
			wantCategory: "02_Curriculum",
		},
		{
			name:         "older year prefix",
			path:         "dataset/Regulations/2019_Regulations_Exams.pdf",
			wantFileName: "2019_Regulations_Exams.pdf",
			wantYear:     2019,
			wantCategory: "Regulations",
		},
		{
			name:         "missing year prefix falls back",
			path:         "dataset/Handbook/StudentHandbook.pdf",
			wantFileName: "StudentHandbook.pdf",
			wantYear:     FallbackYear,
			wantCategory: "Handbook",
		},
		{
			name:         "short digit prefix falls back",
			path:         "dataset/Handbook/24_Handbook.pdf",
			wantFileName: "24_Handbook.pdf",
			wantYear:     FallbackYear,
			wantCategory: "Handbook",
		},
		{
			name:         "digits not at the start fall back",
			path:         "dataset/Handbook/Handbook_2024.pdf",
			wantFileName: "Handbook_2024.pdf",
			wantYear:     FallbackYear,
			wantCategory: "Handbook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := FromPath(context.Background(), tt.path)

			if meta.FileName != tt.wantFileName {
				t.Errorf("FromPath() FileName = %q, want %q", meta.FileName, tt.wantFileName)
			}
			if meta.Year != tt.wantYear {
				t.Errorf("FromPath() Year = %d, want %d", meta.Year, tt.wantYear)
			}
			if meta.Category != tt.wantCategory {
				t.Errorf("FromPath() Category = %q, want %q", meta.Category, tt.wantCategory)
			}
		})
	}
}
