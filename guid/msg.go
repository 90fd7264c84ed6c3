package guid

// Opcode enumerates the ~40 PD_MSG operation codes spec.md §4.5
// dispatches through a single processMessage function. Grouped exactly
// as spec.md groups them so the router's switch (pd/router.go) reads as
// one table, not forty ad hoc branches.
type Opcode int

const (
	OpNone Opcode = iota

	OpDbCreate
	OpDbAcquire
	OpDbRelease
	OpDbFree

	OpMemAlloc
	OpMemUnalloc

	OpWorkCreate
	OpWorkDestroy

	OpEdtTempCreate
	OpEdtTempDestroy

	OpEvtCreate
	OpEvtDestroy
	OpEvtGet

	OpGuidCreate
	OpGuidInfo
	OpGuidMetadataClone
	OpGuidReserve
	OpGuidUnreserve
	OpGuidDestroy

	OpSchedGetWork
	OpSchedNotify
	OpSchedTransact
	OpSchedAnalyze

	OpDepAdd
	OpDepRegSignaler
	OpDepRegWaiter
	OpDepSatisfy
	OpDepUnregSignaler
	OpDepUnregWaiter
	OpDepDynAdd
	OpDepDynRemove

	OpMgtRegister
	OpMgtUnregister
	OpMgtRlNotify
	OpMgtMonitorProgress

	OpHintSet
	OpHintGet

	OpMetadataComm

	OpSalBoot
	OpSalTerminate

	OpResiliencyNotify
	OpResiliencyMonitor
	OpResiliencyCheckpoint
)

func (o Opcode) String() string {
	names := [...]string{
		"NONE",
		"DB_CREATE", "DB_ACQUIRE", "DB_RELEASE", "DB_FREE",
		"MEM_ALLOC", "MEM_UNALLOC",
		"WORK_CREATE", "WORK_DESTROY",
		"EDTTEMP_CREATE", "EDTTEMP_DESTROY",
		"EVT_CREATE", "EVT_DESTROY", "EVT_GET",
		"GUID_CREATE", "GUID_INFO", "GUID_METADATA_CLONE", "GUID_RESERVE", "GUID_UNRESERVE", "GUID_DESTROY",
		"SCHED_GET_WORK", "SCHED_NOTIFY", "SCHED_TRANSACT", "SCHED_ANALYZE",
		"DEP_ADD", "DEP_REGSIGNALER", "DEP_REGWAITER", "DEP_SATISFY", "DEP_UNREGSIGNALER", "DEP_UNREGWAITER", "DEP_DYNADD", "DEP_DYNREMOVE",
		"MGT_REGISTER", "MGT_UNREGISTER", "MGT_RL_NOTIFY", "MGT_MONITOR_PROGRESS",
		"HINT_SET", "HINT_GET",
		"METADATA_COMM",
		"SAL_BOOT", "SAL_TERMINATE",
		"RESILIENCY_NOTIFY", "RESILIENCY_MONITOR", "RESILIENCY_CHECKPOINT",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "UNKNOWN_OP"
}

// Properties are the REQUEST/RESPONSE/FROM_MSG bits spec.md §4.5 says
// every PolicyMsg carries alongside its opcode.
type Properties uint32

const (
	PropRequest Properties = 1 << iota
	PropResponse
	PropReqResponse
	PropFromMsg
	PropIgnorePreProcess
	PropReqPostProcess
)

func (p Properties) Has(bit Properties) bool { return p&bit != 0 }

// DbAccessMode (spec.md §3 "DbAccessMode") is encoded in dependence-add
// properties and carried by RegNode and resolved-dependence triples.
type DbAccessMode int

const (
	ModeNull DbAccessMode = iota
	ModeRO
	ModeRW
	ModeEW
	ModeConst
)

// PolicyMsg is the single message type spec.md §4.5 routes every
// operation through. In-fields/out-fields are modelled as a single `any`
// payload per opcode (In, Out) rather than forty C unions, matching
// idiomatic Go's preference for an interface-typed field over a tagged
// union struct; json-iterator (teacher dep, imported as jsoniter in
// ais/prxs3.go) serializes it across the in-process transport reference
// implementation in transport/loopback.go.
type PolicyMsg struct {
	Opcode     Opcode
	Props      Properties
	Src        Location
	Dst        Location
	ReturnCode int // xerr.Detail, kept as int here to avoid an import cycle
	In         any
	Out        any
}

func NewRequest(op Opcode, src, dst Location, in any) *PolicyMsg {
	return &PolicyMsg{Opcode: op, Props: PropRequest, Src: src, Dst: dst, In: in}
}

func (m *PolicyMsg) Reply(out any, retCode int) *PolicyMsg {
	return &PolicyMsg{
		Opcode: m.Opcode, Props: PropResponse, Src: m.Dst, Dst: m.Src,
		Out: out, ReturnCode: retCode,
	}
}
