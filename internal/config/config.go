// Package config loads the emulator's machine configuration (TOML) and its
// optional memory-patch list (YAML), per SPEC_FULL.md §3.3 and spec.md §6.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"nitro-core-dx/internal/firmware"
)

// Machine is the TOML-loadable configuration for one emulator instance.
type Machine struct {
	FirmwarePath string `toml:"firmware_path"`
	LoadAddress  uint32 `toml:"load_address"`
	EntryPoint   uint32 `toml:"entry_point"`

	SDRAMSizeMiB uint32 `toml:"sdram_size_mib"` // 32 or 64

	EnableCOPShim bool `toml:"enable_cop_shim"`
	MMAPEnabled   bool `toml:"mmap_enabled"`

	DiskImagePath string `toml:"disk_image_path"`

	DeviceStatusWord uint32 `toml:"device_status_word"` // 0x70000030, spec.md §9
	HWAccelKickstart bool   `toml:"hw_accel_kickstart"` // Apple RTOS task-state path, spec.md §9
	BootROMStub      bool   `toml:"boot_rom_stub"`      // spec.md §9

	PatchListPath string `toml:"patch_list_path"`

	LogMaxEntries int      `toml:"log_max_entries"`
	LogComponents []string `toml:"log_components"`
	LogMinLevel   string   `toml:"log_min_level"`
}

// Default returns a Machine with the documented spec defaults applied
// (64 MiB SDRAM, 0x80000000 device status word, MMAP disabled at reset).
func Default() Machine {
	return Machine{
		SDRAMSizeMiB:     64,
		DeviceStatusWord: 0x80000000,
		LogMaxEntries:    20000,
		LogMinLevel:      "info",
	}
}

// LoadMachine reads and decodes a TOML machine configuration file, applying
// Default() first so unset fields keep their documented defaults.
func LoadMachine(path string) (Machine, error) {
	m := Default()
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return Machine{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return m, nil
}

// patchFile is the YAML document shape for a memory-patch list
// (spec.md §9 "firmware-specific patch table").
type patchFile struct {
	Patches []struct {
		Address         string `yaml:"address"`
		Word            string `yaml:"word"`
		ApplyAfterCycle uint64 `yaml:"apply_after_cycle"`
	} `yaml:"patches"`
}

// LoadPatches reads a YAML memory-patch list. Addresses and words are
// written as hex strings ("0x10002000") for readability.
func LoadPatches(path string) ([]firmware.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var pf patchFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	patches := make([]firmware.Patch, 0, len(pf.Patches))
	for _, p := range pf.Patches {
		addr, err := parseHex32(p.Address)
		if err != nil {
			return nil, fmt.Errorf("config: patch address %q: %w", p.Address, err)
		}
		word, err := parseHex32(p.Word)
		if err != nil {
			return nil, fmt.Errorf("config: patch word %q: %w", p.Word, err)
		}
		patches = append(patches, firmware.Patch{
			Address:         addr,
			Word:            word,
			ApplyAfterCycle: p.ApplyAfterCycle,
		})
	}
	return patches, nil
}

func parseHex32(s string) (uint32, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "0x%x", &v)
	if err != nil {
		_, err = fmt.Sscanf(s, "%d", &v)
	}
	return v, err
}
