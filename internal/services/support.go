package services

type HostEventKind int

const (
	FileSelected HostEventKind = iota
	SelectionCancelled
)

func (kind HostEventKind) String() string {
	switch kind {
	case FileSelected:
		return "file-selected"
	case SelectionCancelled:
		return "file-selection-cancelled"
	default:
		return "unknown"
	}
}

type HostEvent struct {
	Kind HostEventKind
	Path string
}
