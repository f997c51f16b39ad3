//go:build logless

package logger

// Log is a zero-cost stand-in for the zerolog-backed logger on bare-metal
// builds: every call is a no-op method on an empty struct, so the compiler
// inlines it away entirely.
var Log = EmptyLog{}

type EmptyLog struct{}

func (l EmptyLog) Debug() EmptyLog   { return l }
func (l EmptyLog) Error() EmptyLog   { return l }
func (l EmptyLog) Warning() EmptyLog { return l }
func (l EmptyLog) Warn() EmptyLog    { return l }
func (l EmptyLog) Info() EmptyLog    { return l }

func (l EmptyLog) Msg(string) EmptyLog { return l }
func (l EmptyLog) Err(error) EmptyLog  { return l }

func (l EmptyLog) Int(string, int) EmptyLog         { return l }
func (l EmptyLog) Str(string, string) EmptyLog      { return l }
func (l EmptyLog) Float64(string, float64) EmptyLog { return l }
func (l EmptyLog) Float32(string, float32) EmptyLog { return l }

func (l EmptyLog) Ints(string, []int) EmptyLog         { return l }
func (l EmptyLog) Strs(string, []string) EmptyLog      { return l }
func (l EmptyLog) Floats64(string, []float64) EmptyLog { return l }
