package telemetry

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/san-kum/softbody/internal/sim"
)

// Hash fingerprints every point position in id order. Equal hashes mean
// bit-identical states.
func Hash(w *sim.World) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, id := range w.IDs() {
		p, _ := w.Point(id)
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
		for _, c := range p.Pos {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c))
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

type Checkpoint struct {
	Tick uint64 `json:"tick" yaml:"tick"`
	Hash string `json:"hash" yaml:"hash"`
}
