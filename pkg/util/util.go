/*
Copyright 2023 The GoStor Authors All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package util provides some basic util functions.
package util

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// SCSI wire format is big-endian.

func GetUnalignedUint16(u8 []uint8) uint16 {
	return binary.BigEndian.Uint16(u8)
}

func GetUnalignedUint32(u8 []uint8) uint32 {
	return binary.BigEndian.Uint32(u8)
}

func GetUnalignedUint64(u8 []uint8) uint64 {
	return binary.BigEndian.Uint64(u8)
}

func PutUnalignedUint16(u8 []uint8, v uint16) {
	binary.BigEndian.PutUint16(u8, v)
}

func PutUnalignedUint32(u8 []uint8, v uint32) {
	binary.BigEndian.PutUint32(u8, v)
}

func PutUnalignedUint64(u8 []uint8, v uint64) {
	binary.BigEndian.PutUint64(u8, v)
}

// NVMe Identify fields are little-endian.

func GetUnalignedLEUint32(u8 []uint8) uint32 {
	return binary.LittleEndian.Uint32(u8)
}

// AllZeros reports whether every byte of b is zero.
func AllZeros(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

// LastNonBlank returns the last n characters of s that are not spaces,
// space-padded on the left when fewer than n remain.
func LastNonBlank(s string, n int) string {
	var kept []byte
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			kept = append(kept, s[i])
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	for len(kept) < n {
		kept = append([]byte{' '}, kept...)
	}
	return string(kept)
}

// HexDump formats buf in a 16-bytes-per-line offset/hex/ascii layout.
func HexDump(buf []byte) string {
	var sb strings.Builder
	for off := 0; off < len(buf); off += 16 {
		end := off + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(&sb, "%08x ", off)
		for i := off; i < off+16; i++ {
			if i == off+8 {
				sb.WriteByte(' ')
			}
			if i < end {
				fmt.Fprintf(&sb, " %02x", buf[i])
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString("  ")
		for i := off; i < end; i++ {
			c := buf[i]
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			sb.WriteByte(c)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
