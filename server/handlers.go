package server

import (
	"bytes"
	"errors"

	"github.com/hupe1980/learner/internal/hash"
	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/routing"
	"github.com/hupe1980/learner/store"
	"github.com/hupe1980/learner/vector"
)

// Handle executes one request against the backing store. Failures are
// reported through the response code; a non-OK response carries no data.
func (s *Server) Handle(req *protocol.Request) *protocol.Response {
	data, err := s.dispatch(req)

	code := codeFor(err)
	if code != protocol.CodeOK {
		data = nil
	}

	return &protocol.Response{Code: code, Data: data}
}

func (s *Server) dispatch(req *protocol.Request) ([]byte, error) {
	if req.Operation < protocol.OpGet || req.Operation > protocol.OpDelete {
		return nil, protocol.CodeUnknownOperation
	}

	// Requests this server accepts are exactly those a client can route.
	if _, err := routing.ReferenceOf(req); err != nil {
		return nil, err
	}

	switch req.Item {
	case protocol.ItemKeyValue:
		if req.Attribute == protocol.AttrValue {
			return s.keyValue(req)
		}
	case protocol.ItemMatrix:
		switch req.Attribute {
		case protocol.AttrName:
			return s.matrixName(req)
		case protocol.AttrIndex:
			return s.matrixIndex(req)
		}
	case protocol.ItemRow, protocol.ItemColumn:
		switch req.Attribute {
		case protocol.AttrValue:
			return s.vectorValue(req)
		case protocol.AttrName:
			return s.labelName(req)
		case protocol.AttrIndex:
			return s.labelIndex(req)
		}
	case protocol.ItemCell:
		if req.Attribute == protocol.AttrValue {
			return s.cell(req)
		}
	}

	return nil, protocol.CodeUnknownOperation
}

func (s *Server) keyValue(req *protocol.Request) ([]byte, error) {
	key := keyValueKey(req.Name)

	switch req.Operation {
	case protocol.OpGet:
		return s.store.Get(key)
	case protocol.OpSet:
		return nil, s.store.Put(key, req.Data)
	default:
		return nil, s.store.Delete(key)
	}
}

func (s *Server) matrixName(req *protocol.Request) ([]byte, error) {
	key := matrixNameKey(req.Matrix)

	switch req.Operation {
	case protocol.OpGet:
		v, err := s.store.Get(key)
		return v, notFoundAs(err, protocol.CodeMissingMatrix)
	case protocol.OpSet:
		if len(req.Name) == 0 {
			return nil, routing.ErrNameMissing
		}

		return nil, s.store.Put(key, req.Name)
	default:
		return nil, notFoundAs(s.store.Delete(key), protocol.CodeMissingMatrix)
	}
}

// matrixIndex serves the registry resolving matrix names to indices.
func (s *Server) matrixIndex(req *protocol.Request) ([]byte, error) {
	if len(req.Name) == 0 {
		return nil, routing.ErrNameMissing
	}

	key := matrixIndexKey(req.Name)

	switch req.Operation {
	case protocol.OpGet:
		v, err := s.store.Get(key)
		return v, notFoundAs(err, protocol.CodeMissingMatrix)
	case protocol.OpSet:
		index, ok := protocol.DecodeIndex(req.Data)
		if !ok {
			return nil, protocol.CodeInvalidLength
		}

		if index < 0 {
			return nil, protocol.CodeIndexOutOfRange
		}

		return nil, s.store.Put(key, req.Data)
	default:
		return nil, notFoundAs(s.store.Delete(key), protocol.CodeMissingMatrix)
	}
}

func (s *Server) vectorValue(req *protocol.Request) ([]byte, error) {
	key := vectorKey(req.Item, req.Matrix, labelIndexOf(req))

	defer s.lock(key)()

	switch req.Operation {
	case protocol.OpGet:
		v, err := s.store.Get(key)
		return v, notFoundAs(err, protocol.CodeMissingVector)
	case protocol.OpSet:
		if err := vector.NewSparse().UnmarshalBinary(req.Data); err != nil {
			return nil, err
		}

		return nil, s.store.Put(key, req.Data)
	default:
		return nil, notFoundAs(s.store.Delete(key), protocol.CodeMissingVector)
	}
}

// labelName reads and writes row and column names by index.
func (s *Server) labelName(req *protocol.Request) ([]byte, error) {
	index := labelIndexOf(req)
	if index < 0 {
		return nil, routing.ErrIndexOutOfRange
	}

	defer s.lock(labelLockKey(req))()

	switch req.Operation {
	case protocol.OpGet:
		v, err := s.store.Get(labelNameKey(req.Item, req.Matrix, index))
		return v, notFoundAs(err, protocol.CodeUnknownKey)
	case protocol.OpSet:
		if len(req.Name) == 0 {
			return nil, routing.ErrNameMissing
		}

		return nil, s.link(req.Item, req.Matrix, index, req.Name)
	default:
		nameKey := labelNameKey(req.Item, req.Matrix, index)

		name, err := s.store.Get(nameKey)
		if err != nil {
			return nil, notFoundAs(err, protocol.CodeUnknownKey)
		}

		return nil, s.unlink(nameKey, labelIndexKey(req.Item, req.Matrix, name))
	}
}

// labelIndex resolves row and column names to indices.
func (s *Server) labelIndex(req *protocol.Request) ([]byte, error) {
	if len(req.Name) == 0 {
		return nil, routing.ErrNameMissing
	}

	defer s.lock(labelLockKey(req))()

	indexKey := labelIndexKey(req.Item, req.Matrix, req.Name)

	switch req.Operation {
	case protocol.OpGet:
		v, err := s.store.Get(indexKey)
		return v, notFoundAs(err, protocol.CodeIndexNotFound)
	case protocol.OpSet:
		index := labelIndexOf(req)
		if index < 0 {
			return nil, routing.ErrIndexOutOfRange
		}

		return nil, s.link(req.Item, req.Matrix, index, req.Name)
	default:
		b, err := s.store.Get(indexKey)
		if err != nil {
			return nil, notFoundAs(err, protocol.CodeIndexNotFound)
		}

		index, ok := protocol.DecodeIndex(b)
		if !ok {
			return nil, protocol.CodeParseError
		}

		return nil, s.unlink(indexKey, labelNameKey(req.Item, req.Matrix, index))
	}
}

// link binds name and index in both directions, dropping the stale halves
// of any previous bindings of either side. The caller holds the label lock.
func (s *Server) link(item protocol.Item, matrix, index int64, name []byte) error {
	nameKey := labelNameKey(item, matrix, index)
	indexKey := labelIndexKey(item, matrix, name)

	if old, err := s.store.Get(nameKey); err == nil && !bytes.Equal(old, name) {
		if err := ignoreNotFound(s.store.Delete(labelIndexKey(item, matrix, old))); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if b, err := s.store.Get(indexKey); err == nil {
		if old, ok := protocol.DecodeIndex(b); ok && old != index {
			if err := ignoreNotFound(s.store.Delete(labelNameKey(item, matrix, old))); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := s.store.Put(nameKey, name); err != nil {
		return err
	}

	return s.store.Put(indexKey, protocol.EncodeIndex(index))
}

func (s *Server) unlink(key, partner []byte) error {
	if err := s.store.Delete(key); err != nil {
		return err
	}

	return ignoreNotFound(s.store.Delete(partner))
}

// cell updates single entries of a row vector. Cells are stored row-major:
// column vectors are not touched.
func (s *Server) cell(req *protocol.Request) ([]byte, error) {
	key := vectorKey(protocol.ItemRow, req.Matrix, req.Row)

	defer s.lock(key)()

	switch req.Operation {
	case protocol.OpGet:
		v, err := s.loadVector(key)
		if err != nil {
			return nil, err
		}

		f, err := v.Get(req.Column)
		if err != nil {
			return nil, err
		}

		return protocol.EncodeFloat(f), nil
	case protocol.OpSet:
		f, ok := protocol.DecodeFloat(req.Data)
		if !ok {
			return nil, protocol.CodeInvalidLength
		}

		v, err := s.loadVector(key)
		if errors.Is(err, protocol.CodeMissingVector) {
			v, err = vector.NewSparse(), nil
		}

		if err != nil {
			return nil, err
		}

		if err := v.Set(req.Column, f); err != nil {
			return nil, err
		}

		return nil, s.storeVector(key, v)
	default:
		v, err := s.loadVector(key)
		if err != nil {
			return nil, err
		}

		if err := v.Delete(req.Column); err != nil {
			return nil, err
		}

		return nil, s.storeVector(key, v)
	}
}

func (s *Server) loadVector(key []byte) (*vector.Sparse, error) {
	b, err := s.store.Get(key)
	if err != nil {
		return nil, notFoundAs(err, protocol.CodeMissingVector)
	}

	v := vector.NewSparse()
	if err := v.UnmarshalBinary(b); err != nil {
		return nil, err
	}

	return v, nil
}

func (s *Server) storeVector(key []byte, v *vector.Sparse) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return err
	}

	return s.store.Put(key, b)
}

// lock acquires the stripe guarding key and returns its release.
func (s *Server) lock(key []byte) func() {
	mu := &s.stripes[hash.CRC32C(key)%uint32(len(s.stripes))]
	mu.Lock()

	return mu.Unlock
}

// labelLockKey guards both directions of one name table.
func labelLockKey(req *protocol.Request) []byte {
	return refKey(req.Item, protocol.AttrIndex, protocol.MatrixRef{Matrix: req.Matrix})
}

func labelIndexOf(req *protocol.Request) int64 {
	if req.Item == protocol.ItemColumn {
		return req.Column
	}

	return req.Row
}

func notFoundAs(err error, code protocol.Code) error {
	if errors.Is(err, store.ErrNotFound) {
		return code
	}

	return err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}

	return err
}
