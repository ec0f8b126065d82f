package ata

import (
	"fmt"
	"os"
)

const sectorSize = 512

// FileImage is a BlockDevice backed by a flat disk image file, used by the
// host façade and disk-image tooling. Sector count is derived from the
// file's size, truncated down to a whole number of 512-byte sectors.
type FileImage struct {
	f       *os.File
	sectors uint64
}

// OpenFileImage opens path for reading and writing as a flat disk image.
func OpenFileImage(path string) (*FileImage, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("ata: opening disk image %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ata: stat disk image %s: %w", path, err)
	}
	return &FileImage{f: f, sectors: uint64(info.Size()) / sectorSize}, nil
}

// Close releases the backing file handle.
func (fi *FileImage) Close() error { return fi.f.Close() }

func (fi *FileImage) SectorCount() uint64 { return fi.sectors }

func (fi *FileImage) ReadSector(lba uint64, buf []byte) error {
	if lba >= fi.sectors {
		return fmt.Errorf("ata: read LBA %d out of range (%d sectors)", lba, fi.sectors)
	}
	_, err := fi.f.ReadAt(buf[:sectorSize], int64(lba)*sectorSize)
	return err
}

func (fi *FileImage) WriteSector(lba uint64, buf []byte) error {
	if lba >= fi.sectors {
		return fmt.Errorf("ata: write LBA %d out of range (%d sectors)", lba, fi.sectors)
	}
	_, err := fi.f.WriteAt(buf[:sectorSize], int64(lba)*sectorSize)
	return err
}
