/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package histogram

import (
	"database/sql"
	"fmt"
	"net"
)

// IPAddrCategoryHistogram hashmap-counts IP addresses keyed by a
// class-masked, little-endian-reinterpreted, mod-65536 hash of the
// address bytes. Grounded on
// original_source/gnat/src/model/histogram/ipaddr_category.rs.
type IPAddrCategoryHistogram struct {
	name   string
	filter string
	count  int64
	freq   map[int64]int64
}

// BuildIPAddrCategoryHistogram trains from raw address strings (IPv4 or
// IPv6, textual form).
func BuildIPAddrCategoryHistogram(name, filter string, addrs []string) *IPAddrCategoryHistogram {
	h := &IPAddrCategoryHistogram{name: name, filter: filter, freq: make(map[int64]int64)}
	for _, a := range addrs {
		h.freq[IPAddrKey(a)]++
		h.count++
	}
	return h
}

// IPAddrKey computes the class-masked mod-65536 key for a textual IP
// address. Unparseable addresses hash to 0.
//
// IPv4: the first octet selects the natural class boundary — 0-127 -> /8,
// 128-191 -> /16, 192-223 -> /24, 224-239 (multicast) -> /24, 240-255
// (reserved) -> /32 (no masking). The masked 4-byte address is then
// reinterpreted little-endian as a u32 and reduced mod 65536, which is
// equivalent to reading the first two masked bytes as a little-endian
// uint16.
//
// IPv6: no masking; the hash is the first two bytes of the 16-byte
// address read little-endian.
func IPAddrKey(addr string) int64 {
	ip := net.ParseIP(addr)
	if ip == nil {
		return 0
	}

	if v4 := ip.To4(); v4 != nil {
		masked := make([]byte, 4)
		copy(masked, v4)
		switch {
		case v4[0] <= 127:
			masked[1], masked[2], masked[3] = 0, 0, 0
		case v4[0] <= 191:
			masked[2], masked[3] = 0, 0
		case v4[0] <= 223:
			masked[3] = 0
		case v4[0] <= 239:
			masked[3] = 0
		default:
			// reserved range: no masking
		}
		low16 := int64(masked[0]) | int64(masked[1])<<8
		return low16 % IPAddrHashSpace
	}

	v6 := ip.To16()
	if v6 == nil {
		return 0
	}
	low16 := int64(v6[0]) | int64(v6[1])<<8
	return low16 % IPAddrHashSpace
}

func (h *IPAddrCategoryHistogram) Name() string    { return h.name }
func (h *IPAddrCategoryHistogram) Kind() Kind      { return KindIPAddrCategory }
func (h *IPAddrCategoryHistogram) Count() int64    { return h.count }
func (h *IPAddrCategoryHistogram) BinCount() int64 { return int64(len(h.freq)) }
func (h *IPAddrCategoryHistogram) HashSize() int64 { return IPAddrHashSpace }
func (h *IPAddrCategoryHistogram) Filter() string  { return h.filter }

func (h *IPAddrCategoryHistogram) Probability(addr string) float64 {
	freq, ok := h.freq[IPAddrKey(addr)]
	if !ok {
		return unseen(h.count)
	}
	return laplace(freq, h.count)
}

func (h *IPAddrCategoryHistogram) Serialize(tx *sql.Tx, observe string, vlan uint16, proto string) error {
	if err := insertSummary(tx, Summary{
		Observe: observe, VLAN: vlan, Proto: proto, Name: h.name, Kind: KindIPAddrCategory,
		Count: h.count, HashSize: IPAddrHashSpace, BinCount: h.BinCount(), Filter: h.filter,
	}); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`DELETE FROM histogram_ipaddr_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		observe, vlan, proto, h.name,
	); err != nil {
		return fmt.Errorf("clear histogram_ipaddr_category: %w", err)
	}
	for key, value := range h.freq {
		if _, err := tx.Exec(
			`INSERT INTO histogram_ipaddr_category (observe, vlan, proto, name, key, value)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			observe, vlan, proto, h.name, key, value,
		); err != nil {
			return fmt.Errorf("insert histogram_ipaddr_category row: %w", err)
		}
	}
	return nil
}

// LoadIPAddrCategoryHistogramFromDB reads back a trained histogram.
func LoadIPAddrCategoryHistogramFromDB(db *sql.DB, s Summary) (*IPAddrCategoryHistogram, error) {
	rows, err := db.Query(
		`SELECT key, value FROM histogram_ipaddr_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		s.Observe, s.VLAN, s.Proto, s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("query histogram_ipaddr_category: %w", err)
	}
	defer rows.Close()

	h := &IPAddrCategoryHistogram{name: s.Name, filter: s.Filter, count: s.Count, freq: make(map[int64]int64)}
	for rows.Next() {
		var key, value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan histogram_ipaddr_category row: %w", err)
		}
		h.freq[key] = value
	}
	return h, rows.Err()
}
