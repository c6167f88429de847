package constants

// Research workflow stages. The set is open-ended: the backend may report stages
// not listed here, which are tracked but do not move progress.
const (
	StagePlanning   = "planning"
	StageSearching  = "searching"
	StageAnalyzing  = "analyzing"
	StageGenerating = "generating"
)

// stageProgress maps a stage to the progress percentage reached on entering it.
//
//nolint:gochecknoglobals // fixed lookup table
var stageProgress = map[string]int{
	StagePlanning:   15,
	StageSearching:  40,
	StageAnalyzing:  60,
	StageGenerating: 85,
}

// StageProgress returns the progress percentage for a stage and whether the
// stage has a mapping.
func StageProgress(stage string) (int, bool) {
	p, ok := stageProgress[stage]
	return p, ok
}

// KnownStages returns the mapped stages in workflow order.
func KnownStages() []string {
	return []string{StagePlanning, StageSearching, StageAnalyzing, StageGenerating}
}

// LogLevel is the severity of an active-task log entry.
type LogLevel string

// Log levels accepted by the active-task log.
const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// IsValid reports whether l is one of the known log levels.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogInfo, LogSuccess, LogWarning, LogError:
		return true
	default:
		return false
	}
}

// SectionType classifies an outline section.
type SectionType string

// Outline section types.
const (
	SectionCover   SectionType = "cover"
	SectionContent SectionType = "content"
	SectionSummary SectionType = "summary"
)

// IsValid reports whether t is one of the known section types.
func (t SectionType) IsValid() bool {
	switch t {
	case SectionCover, SectionContent, SectionSummary:
		return true
	default:
		return false
	}
}
