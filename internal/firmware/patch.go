package firmware

// Patch is an emulator-only memory override applied after the cycle count
// reaches ApplyAfterCycle, used for firmware-specific workarounds for
// subsystems not modeled at the register level (spec.md §9 "Firmware-
// specific patch table"). Patches are configuration input, never baked
// into the core's default behavior.
type Patch struct {
	Address         uint32
	Word            uint32
	ApplyAfterCycle uint64
}

// Bus is the minimal write surface patches need.
type Bus interface {
	Write32(addr uint32, v uint32)
}

// ApplyPatches writes every patch whose ApplyAfterCycle has been reached
// and has not yet been applied, returning the updated applied set.
func ApplyPatches(bus Bus, patches []Patch, cycle uint64, applied []bool) []bool {
	if applied == nil {
		applied = make([]bool, len(patches))
	}
	for i, p := range patches {
		if applied[i] || cycle < p.ApplyAfterCycle {
			continue
		}
		bus.Write32(p.Address, p.Word)
		applied[i] = true
	}
	return applied
}
