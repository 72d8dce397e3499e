package domain

type ArchiveMetadata struct {
	Name           string `json:"name"`
	Size           uint64 `json:"size"`
	CompressedSize uint64 `json:"compressedSize"`
	NumberOfFiles  int    `json:"numberOfFiles"`
}

// Ratio is compressed over uncompressed size, 0 for an empty archive.
func (meta ArchiveMetadata) Ratio() float64 {
	if meta.Size == 0 {
		return 0
	}
	return float64(meta.CompressedSize) / float64(meta.Size)
}

type RecentArchive struct {
	Path string `json:"path"`
	Name string `json:"name"`
}
