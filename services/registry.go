package services

import (
	"crypto/rand"
	"errors"
	"sync"
)

const (
	roomCodeLength  = 6
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrRoomNotFound = errors.New("room not found")

// Registry maps room codes to live rooms. Code generation and insertion
// happen under one lock, so two concurrent creates can never produce the
// same code.
type Registry struct {
	mutex sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom generates a code unused by any live room, builds the room via
// the supplied constructor and inserts it atomically.
func (reg *Registry) CreateRoom(build func(code string) *Room) (string, *Room) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	for {
		code := generateRoomCode()
		if _, taken := reg.rooms[code]; taken {
			continue
		}
		room := build(code)
		reg.rooms[code] = room
		return code, room
	}
}

func (reg *Registry) GetRoom(code string) (*Room, error) {
	reg.mutex.RLock()
	room, ok := reg.rooms[code]
	reg.mutex.RUnlock()

	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// DeleteRoom removes and shuts down a room. Deleting a missing room is a
// no-op.
func (reg *Registry) DeleteRoom(code string) {
	reg.mutex.Lock()
	room, ok := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mutex.Unlock()

	if ok {
		room.Shutdown()
	}
}

func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

func generateRoomCode() string {
	// Reject bytes past the largest multiple of the charset size so every
	// character is equally likely.
	limit := 256 - 256%len(roomCodeCharset)

	code := make([]byte, 0, roomCodeLength)
	buf := make([]byte, roomCodeLength)
	for len(code) < roomCodeLength {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, roomCodeCharset[int(b)%len(roomCodeCharset)])
			if len(code) == roomCodeLength {
				break
			}
		}
	}
	return string(code)
}
