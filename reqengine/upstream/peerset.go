/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package upstream

import "sync"

// PeerSet is spec.md §3's `peers` header: a linked list of peer records
// plus the aggregate fields used by selection (`number`, `total_weight`,
// `weighted`, `single`) and a pointer to the backup list.
type PeerSet struct {
	mu sync.RWMutex

	Peers       []*Peer
	Number      int
	TotalWeight int
	Weighted    bool
	Single      bool

	Next *PeerSet // backup list
}

func buildPeerSet(cfgs []PeerConfig) *PeerSet {
	ps := &PeerSet{}
	for _, c := range cfgs {
		ps.Peers = append(ps.Peers, newPeer(c))
		ps.TotalWeight += max1(c.Weight)
		if c.Weight != 1 {
			ps.Weighted = true
		}
	}
	ps.Number = len(ps.Peers)
	if ps.Number == 1 {
		ps.Single = true
	}
	return ps
}

// Build partitions configured server entries into primary/backup (spec.md
// §4.14's Build step). If cfgs is empty, the caller is expected to have
// resolved proxy_pass into a single-peer cfgs slice with
// weight=1,max_fails=1,fail_timeout=10s beforehand (DefaultPeerConfig).
func Build(cfgs []PeerConfig) *PeerSet {
	var primary, backup []PeerConfig
	for _, c := range cfgs {
		if c.Backup {
			backup = append(backup, c)
		} else {
			primary = append(primary, c)
		}
	}

	ps := buildPeerSet(primary)
	if len(backup) > 0 {
		ps.Next = buildPeerSet(backup)
	}
	return ps
}

// DefaultPeerConfig is used when no explicit `server` list is configured:
// resolve proxy_pass to one peer per address, all with these defaults
// (spec.md §4.14).
func DefaultPeerConfig(name string) PeerConfig {
	return PeerConfig{Name: name, Weight: 1, MaxFails: 1, FailTimeout: 10_000_000_000}
}

func (ps *PeerSet) maxOf(other *PeerSet) int {
	n := ps.Number
	if other != nil && other.Number > n {
		n = other.Number
	}
	return n
}

// resetFails clears fails across every peer (used on total selection
// failure, spec.md §4.14's "reset all fails=0 to enable quick recovery").
func (ps *PeerSet) resetFails() {
	for _, p := range ps.Peers {
		p.mu.Lock()
		p.fails = 0
		p.mu.Unlock()
	}
}
