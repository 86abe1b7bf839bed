package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// ResidencySetDescriptor is an MTLResidencySetDescriptor.
type ResidencySetDescriptor struct {
	*objc.Object
}

func NewResidencySetDescriptor() *ResidencySetDescriptor {
	return wrap[ResidencySetDescriptor](objc.New("MTLResidencySetDescriptor"))
}

func (rd *ResidencySetDescriptor) Label() string     { return label(rd) }
func (rd *ResidencySetDescriptor) SetLabel(s string) { setLabel(rd, s) }

func (rd *ResidencySetDescriptor) InitialCapacity() uint {
	return uint(objc.SendUint(rd, "initialCapacity"))
}

func (rd *ResidencySetDescriptor) SetInitialCapacity(n uint) {
	objc.SendVoid(rd, "setInitialCapacity:", n)
}

// ResidencySet is an MTLResidencySet: a group of allocations made resident
// together. Additions and removals take effect at the next Commit.
type ResidencySet struct {
	*objc.Object
}

func (d *Device) NewResidencySet(desc *ResidencySetDescriptor) (*ResidencySet, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "residency set", Err: errNilDescriptor}
	}
	obj, err := createWithError("residency set", d, "newResidencySetWithDescriptor:error:", desc)
	return wrap[ResidencySet](obj), err
}

func (s *ResidencySet) Label() string       { return objc.SendString(s, "label") }
func (s *ResidencySet) Device() *Device     { return deviceOf(s) }
func (s *ResidencySet) AllocatedSize() uint { return uint(objc.SendUint(s, "allocatedSize")) }

func (s *ResidencySet) AddAllocation(a Allocation)    { objc.SendVoid(s, "addAllocation:", a) }
func (s *ResidencySet) RemoveAllocation(a Allocation) { objc.SendVoid(s, "removeAllocation:", a) }
func (s *ResidencySet) RemoveAllAllocations()         { objc.SendVoid(s, "removeAllAllocations") }

func (s *ResidencySet) ContainsAllocation(a Allocation) bool {
	return objc.SendBool(s, "containsAllocation:", a)
}

func (s *ResidencySet) AllocationCount() uint { return uint(objc.SendUint(s, "allocationCount")) }

func (s *ResidencySet) Commit()           { objc.SendVoid(s, "commit") }
func (s *ResidencySet) RequestResidency() { objc.SendVoid(s, "requestResidency") }
func (s *ResidencySet) EndResidency()     { objc.SendVoid(s, "endResidency") }

// AddResidencySet keeps set resident for every command buffer of the queue.
func (q *CommandQueue) AddResidencySet(set *ResidencySet) {
	objc.SendVoid(q, "addResidencySet:", set)
}

func (q *CommandQueue) RemoveResidencySet(set *ResidencySet) {
	objc.SendVoid(q, "removeResidencySet:", set)
}
