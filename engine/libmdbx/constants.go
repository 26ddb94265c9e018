package libmdbx

import "github.com/caffeineduck/mdbsh/mdb"

// Values from mdbx.h, names without the MDBX_ prefix.
var constants = []mdb.Constant{
	// environment flags
	{Name: "NOSUBDIR", Value: 0x4000},
	{Name: "SAFE_NOSYNC", Value: 0x10000},
	{Name: "RDONLY", Value: 0x20000},
	{Name: "NOMETASYNC", Value: 0x40000},
	{Name: "WRITEMAP", Value: 0x80000},
	{Name: "EXCLUSIVE", Value: 0x400000},
	{Name: "NORDAHEAD", Value: 0x800000},
	{Name: "NOMEMINIT", Value: 0x1000000},
	{Name: "LIFORECLAIM", Value: 0x4000000},
	{Name: "PAGEPERTURB", Value: 0x8000000},
	{Name: "ACCEDE", Value: 0x40000000},

	// database flags
	{Name: "REVERSEKEY", Value: 0x02},
	{Name: "DUPSORT", Value: 0x04},
	{Name: "INTEGERKEY", Value: 0x08},
	{Name: "DUPFIXED", Value: 0x10},
	{Name: "INTEGERDUP", Value: 0x20},
	{Name: "REVERSEDUP", Value: 0x40},
	{Name: "CREATE", Value: 0x40000},

	// put flags
	{Name: "NOOVERWRITE", Value: 0x10},
	{Name: "NODUPDATA", Value: 0x20},
	{Name: "CURRENT", Value: 0x40},
	{Name: "ALLDUPS", Value: 0x80},
	{Name: "RESERVE", Value: 0x10000},
	{Name: "APPEND", Value: 0x20000},
	{Name: "APPENDDUP", Value: 0x40000},
	{Name: "MULTIPLE", Value: 0x80000},

	// copy flags
	{Name: "CP_COMPACT", Value: 0x01},

	// cursor ops
	{Name: "FIRST", Value: 0},
	{Name: "FIRST_DUP", Value: 1},
	{Name: "GET_BOTH", Value: 2},
	{Name: "GET_BOTH_RANGE", Value: 3},
	{Name: "GET_CURRENT", Value: 4},
	{Name: "GET_MULTIPLE", Value: 5},
	{Name: "LAST", Value: 6},
	{Name: "LAST_DUP", Value: 7},
	{Name: "NEXT", Value: 8},
	{Name: "NEXT_DUP", Value: 9},
	{Name: "NEXT_MULTIPLE", Value: 10},
	{Name: "NEXT_NODUP", Value: 11},
	{Name: "PREV", Value: 12},
	{Name: "PREV_DUP", Value: 13},
	{Name: "PREV_NODUP", Value: 14},
	{Name: "SET", Value: 15},
	{Name: "SET_KEY", Value: 16},
	{Name: "SET_RANGE", Value: 17},
	{Name: "PREV_MULTIPLE", Value: 18},
	{Name: "SET_LOWERBOUND", Value: 19},
	{Name: "SET_UPPERBOUND", Value: 20},

	// error codes
	{Name: "KEYEXIST", Value: -30799},
	{Name: "NOTFOUND", Value: -30798},
	{Name: "PAGE_NOTFOUND", Value: -30797},
	{Name: "CORRUPTED", Value: -30796},
	{Name: "PANIC", Value: -30795},
	{Name: "VERSION_MISMATCH", Value: -30794},
	{Name: "INVALID", Value: -30793},
	{Name: "MAP_FULL", Value: -30792},
	{Name: "DBS_FULL", Value: -30791},
	{Name: "READERS_FULL", Value: -30790},
	{Name: "TXN_FULL", Value: -30788},
	{Name: "CURSOR_FULL", Value: -30787},
	{Name: "PAGE_FULL", Value: -30786},
	{Name: "UNABLE_EXTEND_MAPSIZE", Value: -30785},
	{Name: "INCOMPATIBLE", Value: -30784},
	{Name: "BAD_RSLOT", Value: -30783},
	{Name: "BAD_TXN", Value: -30782},
	{Name: "BAD_VALSIZE", Value: -30781},
	{Name: "BAD_DBI", Value: -30780},
	{Name: "PROBLEM", Value: -30779},
	{Name: "BUSY", Value: -30778},
	{Name: "EMULTIVAL", Value: -30421},
	{Name: "EBADSIGN", Value: -30420},
	{Name: "WANNA_RECOVERY", Value: -30419},
	{Name: "EKEYMISMATCH", Value: -30418},
	{Name: "TOO_LARGE", Value: -30417},
	{Name: "THREAD_MISMATCH", Value: -30416},
	{Name: "TXN_OVERLAPPING", Value: -30415},
	{Name: "BACKLOG_DEPLETED", Value: -30414},
	{Name: "DUPLICATED_CLK", Value: -30413},
	{Name: "DANGLING_DBI", Value: -30412},
	{Name: "OUSTED", Value: -30411},
	{Name: "MVCC_RETARDED", Value: -30410},
}
