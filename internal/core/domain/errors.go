package domain

import "errors"

// Sentinel errors surfaced by the core. The HTTP layer maps these to status
// codes; everything else is treated as an internal error.
var (
	// ErrNotFound indicates a store or PDV that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName indicates a store/PDV name collision (case-insensitive).
	ErrDuplicateName = errors.New("name already in use")

	// ErrLocationConflict indicates another store at the exact same coordinates.
	ErrLocationConflict = errors.New("a store already exists at these coordinates")

	// ErrStoreHasPDVs blocks deletion of a store that PDVs still reference.
	ErrStoreHasPDVs = errors.New("store has associated PDVs")

	// ErrInvalidState indicates an unknown state abbreviation.
	ErrInvalidState = errors.New("invalid state abbreviation")

	// ErrInvalidParentStore indicates a PDV pointing at a missing parent store.
	ErrInvalidParentStore = errors.New("invalid or non-store parent")

	// ErrAddressResolution indicates a postal code that could not be resolved
	// to a usable street/locality/region.
	ErrAddressResolution = errors.New("postal code could not be resolved")

	// ErrGeocoding indicates an address that yielded no coordinates.
	ErrGeocoding = errors.New("address could not be geocoded")

	// ErrDistanceMismatch indicates a distance provider response whose length
	// does not match the requested destination count.
	ErrDistanceMismatch = errors.New("distance result count does not match destinations")
)
