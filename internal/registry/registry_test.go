package registry

import (
	"testing"

	"github.com/marmos91/dittorpc/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hashService struct{}

func (h *hashService) DoHash(x int32) int32 {
	return int32((int64(x) * 2654435761) % 2147483647)
}

type kvService struct{ m map[string]string }

func (k *kvService) Get(key string) string { return k.m[key] }

type lifecycleService struct{ initialized bool }

func (l *lifecycleService) Initialize()          { l.initialized = true }
func (l *lifecycleService) CheckInitialized() bool { return l.initialized }

func TestExportMethodAssignsSequentialIDs(t *testing.T) {
	svc := &hashService{}
	s := NewService(1)

	id0, err := s.ExportMethod(svc.DoHash)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id0)

	lf := &lifecycleService{}
	id1, err := s.ExportMethod(lf.Initialize)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id1)

	id2, err := s.ExportMethod(lf.CheckInitialized)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), id2)
}

func TestExportMethodRejectsDuplicate(t *testing.T) {
	svc := &hashService{}
	s := NewService(1)
	_, err := s.ExportMethod(svc.DoHash)
	require.NoError(t, err)

	_, err = s.ExportMethod(svc.DoHash)
	assert.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestExportMethodRejectsNonFunction(t *testing.T) {
	s := NewService(1)
	_, err := s.ExportMethod(42)
	assert.ErrorIs(t, err, ErrNotAFunction)
}

func TestExportMethodRejectsTooManyArgs(t *testing.T) {
	s := NewService(1)
	_, err := s.ExportMethod(func(a, b, c, d, e int32) int32 { return a + b + c + d + e })
	assert.Error(t, err)
}

func TestExportMethodAcceptsCompositeArgs(t *testing.T) {
	s := NewService(1)
	id, err := s.ExportMethod(func(a int32, b uint32) uint64 { return uint64(a) + uint64(b) })
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id)
}

func TestInvokeCompositeProcedure(t *testing.T) {
	s := NewService(1)
	id, err := s.ExportMethod(func(a int32, b uint32) uint64 { return uint64(a)<<32 | uint64(b) })
	require.NoError(t, err)

	argBuf := make([]byte, 8)
	n1, ok := codec.Encode(argBuf, int32(7))
	require.True(t, ok)
	_, ok = codec.Encode(argBuf[n1:], uint32(9))
	require.True(t, ok)

	out := make([]byte, 8)
	consumed, produced, status := s.Invoke(id, argBuf, out)
	require.Equal(t, Success, status)
	assert.Equal(t, 8, consumed)
	assert.Equal(t, 8, produced)

	result, _, decStatus := codec.Decode[uint64](out)
	require.Equal(t, codec.StatusOK, decStatus)
	assert.Equal(t, uint64(7)<<32|9, result)
}

func TestProcedureIDMatchesClientSideStub(t *testing.T) {
	server := NewService(1)
	svc := &hashService{}
	_, err := server.ExportMethod(svc.DoHash)
	require.NoError(t, err)

	client := NewService(1)
	_, err = client.ExportMethod((*hashService)(nil).DoHash)
	require.NoError(t, err)

	id, ok := client.ProcedureID((*hashService)(nil).DoHash)
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
}

func TestInvokeHashProcedure(t *testing.T) {
	svc := &hashService{}
	s := NewService(1)
	id, err := s.ExportMethod(svc.DoHash)
	require.NoError(t, err)

	argBuf := make([]byte, 4)
	_, ok := codec.Encode(argBuf, int32(1998))
	require.True(t, ok)

	out := make([]byte, 4)
	consumed, produced, status := s.Invoke(id, argBuf, out)
	require.Equal(t, Success, status)
	assert.Equal(t, 4, consumed)
	assert.Equal(t, 4, produced)

	result, _, decStatus := codec.Decode[int32](out)
	require.Equal(t, codec.StatusOK, decStatus)
	assert.Equal(t, int32(1425526035), result)
}

func TestInvokeReportsNeedMoreArgs(t *testing.T) {
	svc := &hashService{}
	s := NewService(1)
	id, err := s.ExportMethod(svc.DoHash)
	require.NoError(t, err)

	_, _, status := s.Invoke(id, []byte{1, 2}, make([]byte, 4))
	assert.Equal(t, NeedMoreArgs, status)
}

func TestInvokeUnknownProcedureIsProgramMismatch(t *testing.T) {
	s := NewService(1)
	_, _, status := s.Invoke(5, nil, nil)
	assert.Equal(t, ProgramMismatch, status)
}

func TestInvokeZeroArgZeroReturn(t *testing.T) {
	lf := &lifecycleService{}
	s := NewService(1)
	initID, err := s.ExportMethod(lf.Initialize)
	require.NoError(t, err)
	checkID, err := s.ExportMethod(lf.CheckInitialized)
	require.NoError(t, err)

	consumed, produced, status := s.Invoke(initID, nil, nil)
	require.Equal(t, Success, status)
	assert.Equal(t, 0, consumed)
	assert.Equal(t, 0, produced)

	out := make([]byte, 1)
	_, produced, status = s.Invoke(checkID, nil, out)
	require.Equal(t, Success, status)
	assert.Equal(t, 1, produced)
	assert.Equal(t, byte(1), out[0])
}

func TestInvokeStringArgument(t *testing.T) {
	kv := &kvService{m: map[string]string{"K": "Wall"}}
	s := NewService(1)
	id, err := s.ExportMethod(kv.Get)
	require.NoError(t, err)

	argBuf := make([]byte, 8)
	argBuf[0] = 1
	argBuf[1] = 'K'

	out := make([]byte, 8)
	_, produced, status := s.Invoke(id, argBuf, out)
	require.Equal(t, Success, status)
	assert.Equal(t, "Wall", string(out[1:produced]))
}

func TestRegistryDispatchUnknownInstanceIsProgramMismatch(t *testing.T) {
	r := NewRegistry()
	_, _, status := r.Dispatch(99, 0, nil, nil)
	assert.Equal(t, ProgramMismatch, status)
}

func TestRegistryAddServiceRejectsDuplicateInstance(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddService(1, NewService(1)))
	assert.ErrorIs(t, r.AddService(1, NewService(1)), ErrDuplicateInstance)
}

func TestRegistryDispatchRoutesToService(t *testing.T) {
	svc := &hashService{}
	s := NewService(7)
	id, err := s.ExportMethod(svc.DoHash)
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.AddService(7, s))

	argBuf := make([]byte, 4)
	codec.Encode(argBuf, int32(1998))
	out := make([]byte, 4)

	_, produced, status := r.Dispatch(7, id, argBuf, out)
	require.Equal(t, Success, status)
	result, _, decStatus := codec.Decode[int32](out[:produced])
	require.Equal(t, codec.StatusOK, decStatus)
	assert.Equal(t, int32(1425526035), result)
}
