package spatial

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/san-kum/softbody/internal/vmath"
)

type probe struct {
	id  uint64
	pos vmath.Vec3
}

func (p *probe) GridID() uint64      { return p.id }
func (p *probe) GridPos() vmath.Vec3 { return p.pos }

// SelfTestConfig describes a random box of probes. Moved probes are
// re-scattered after the first insertion so the update path is covered.
type SelfTestConfig struct {
	Objects int
	Moved   int
	Size    vmath.Vec3
	Side    float64
	Seed    uint64
}

type SelfTestResult struct {
	Objects   int
	Probe     uint64
	Reference []uint64 // brute force ids within Side of the probe
	Indexed   []uint64 // ids the index reported within Side
	Symmetric bool
	Stats     Stats
	Insert    time.Duration
	Brute     time.Duration
	Query     time.Duration
}

func (r SelfTestResult) Passed() bool {
	return r.Symmetric && slices.Equal(r.Reference, r.Indexed)
}

// SelfTest compares a neighbourhood query on the middle probe against a
// brute force scan of every probe.
func SelfTest(cfg SelfTestConfig) (SelfTestResult, error) {
	if cfg.Objects < 2 {
		return SelfTestResult{}, fmt.Errorf("spatial: self test needs at least 2 objects, got %d", cfg.Objects)
	}
	ix, err := New[*probe](cfg.Side)
	if err != nil {
		return SelfTestResult{}, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	place := func() vmath.Vec3 {
		return vmath.V(rng.Float64()*cfg.Size[0], rng.Float64()*cfg.Size[1], rng.Float64()*cfg.Size[2])
	}

	start := time.Now()
	probes := make([]*probe, cfg.Objects)
	for i := range probes {
		probes[i] = &probe{id: uint64(i + 1), pos: place()}
		if err := ix.Add(probes[i], NoMask); err != nil {
			return SelfTestResult{}, err
		}
	}
	for i := 0; i < min(cfg.Moved, len(probes)); i++ {
		probes[i].pos = place()
	}
	ix.UpdateAll(NoMask)
	res := SelfTestResult{Objects: cfg.Objects, Insert: time.Since(start)}

	target := probes[len(probes)/2]
	res.Probe = target.id
	r2 := cfg.Side * cfg.Side

	start = time.Now()
	for _, p := range probes {
		if p != target && vmath.DistSq(p.pos, target.pos) < r2 {
			res.Reference = append(res.Reference, p.id)
		}
	}
	res.Brute = time.Since(start)

	start = time.Now()
	ix.ForEachNeighbour(target, func(n, obj *probe) bool {
		if vmath.DistSq(n.pos, obj.pos) < r2 {
			res.Indexed = append(res.Indexed, n.id)
		}
		return false
	}, NoMask)
	res.Query = time.Since(start)

	slices.Sort(res.Reference)
	slices.Sort(res.Indexed)
	_, broken := ix.CheckSymmetry()
	res.Symmetric = !broken
	res.Stats = ix.Stats()
	return res, nil
}
