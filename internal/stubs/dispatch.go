package stubs

// slotSize is the width of one stub vector slot (a 64-bit pointer).
const slotSize = 8

// maxDisplacement is the largest positive displacement LG accepts
// (signed 20 bits).
const maxDisplacement = 0x7FFFF

// dispatchSeq loads the address of slot 0 into GPR15. The first
// instruction carries the stub's label; the rest are unlabelled.
// Both sequences end by stepping over the 0x28-byte stub vector header
// to the slots array.
type dispatchSeq struct {
	first string
	rest  []string
}

var dispatchSeqs = map[DispatchMode]dispatchSeq{
	DispatchR12: {
		first: "LLGT 15,X'2A8'(,12)   Get the (R)LE CAA's RLETask",
		rest: []string{
			"LLGT 15,X'38'(,15)   Get the RLETasks RLEAnchor",
			"LG   15,X'18'(,15)   Get the Stub Vector ",
			"LA   15,X'28'(,15)   Slots address",
		},
	},
	DispatchZVTE: {
		first: "LLGT 15,16(0,0)       CVT",
		rest: []string{
			"LLGT 15,X'8C'(,15)    ECVT",
			"LLGT 15,X'CC'(,15)    CSRCTABL",
			"LLGT 15,X'23C'(,15)   ZVT",
			"LLGT 15,X'9C'(,15)    FIRST ZVTE (the ZIS)",
			"LG   15,X'80'(,15)    ZIS STUB VECTOR",
			"LA   15,X'28'(,15)    Slots address",
		},
	},
}

func lookupDispatch(m DispatchMode) (dispatchSeq, bool) {
	seq, ok := dispatchSeqs[m]
	return seq, ok
}
