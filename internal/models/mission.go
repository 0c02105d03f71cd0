package models

import "fmt"

// Chapter is one ordered step of a mission.
type Chapter struct {
	ID        string     `json:"chapterID"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Questions []Question `json:"questions"`
}

// Mission owns an ordered sequence of chapters.
type Mission struct {
	ID          string    `json:"missionID"`
	Title       string    `json:"missionTitle"`
	Description string    `json:"missionDescription,omitempty"`
	XPReward    int       `json:"xpReward,omitempty"`
	Chapters    []Chapter `json:"chapters"`
}

// Questions flattens every chapter's questions in global index order.
func (m *Mission) Questions() []Question {
	var out []Question
	for _, ch := range m.Chapters {
		out = append(out, ch.Questions...)
	}
	return out
}

// ChapterOffsets returns, for each chapter, the global index of its first question.
func (m *Mission) ChapterOffsets() []int {
	offsets := make([]int, len(m.Chapters))
	total := 0
	for i, ch := range m.Chapters {
		offsets[i] = total
		total += len(ch.Questions)
	}
	return offsets
}

// GlobalIndex maps (chapter, local) to the flattened question index.
func (m *Mission) GlobalIndex(chapter, local int) (int, error) {
	if chapter < 0 || chapter >= len(m.Chapters) {
		return 0, fmt.Errorf("chapter %d out of range [0,%d)", chapter, len(m.Chapters))
	}
	if local < 0 || local >= len(m.Chapters[chapter].Questions) {
		return 0, fmt.Errorf("question %d out of range in chapter %d", local, chapter)
	}
	return m.ChapterOffsets()[chapter] + local, nil
}

// LocalIndex is the inverse of GlobalIndex.
func (m *Mission) LocalIndex(global int) (chapter, local int, err error) {
	if global < 0 {
		return 0, 0, fmt.Errorf("global index %d out of range", global)
	}
	remaining := global
	for i, ch := range m.Chapters {
		if remaining < len(ch.Questions) {
			return i, remaining, nil
		}
		remaining -= len(ch.Questions)
	}
	return 0, 0, fmt.Errorf("global index %d out of range", global)
}

// MissionScore is derived from the result set, never stored.
type MissionScore struct {
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
	Completed bool    `json:"completed"`
}
