package hashstore

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type Stats struct {
	Size                    int
	Capacity                int
	EffectiveCapacity       int
	Tombstones              int
	LoadFactor              float32
	TombstonesCapacityRatio float32
	TombstonesSizeRatio     float32
	MemoryBytes             uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("size=%s capacity=%s load=%.3f tombstones=%s memory=%s",
		humanize.Comma(int64(s.Size)),
		humanize.Comma(int64(s.Capacity)),
		s.LoadFactor,
		humanize.Comma(int64(s.Tombstones)),
		humanize.Bytes(s.MemoryBytes),
	)
}
