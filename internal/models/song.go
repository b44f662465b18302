package models

import (
	"time"

	"github.com/desertthunder/songcart/internal/partition"
)

// Author identifies the signed-in user who submitted a song.
type Author struct {
	Identity string `json:"identity"`
	Email    string `json:"email"`
}

// Song is a single record in a catalog, cart or history partition.
type Song struct {
	ID         string        `json:"id"`
	Sequence   int           `json:"-"`
	UID        string        `json:"uid"`
	Author     *Author       `json:"author,omitempty"`
	ArtistName string        `json:"artist_name"`
	Title      string        `json:"title"`
	AlbumName  string        `json:"album_name"`
	Price      string        `json:"price"`
	CreatedAt  time.Time     `json:"created_at"`
	Partition  partition.Key `json:"partition,omitzero"`
}

// NewSong builds an unsaved song with its uid already computed.
func NewSong(uid, artistName, title, albumName, price string, author *Author) *Song {
	return &Song{
		UID:        uid,
		Author:     author,
		ArtistName: artistName,
		Title:      title,
		AlbumName:  albumName,
		Price:      price,
	}
}

// Copy returns the descriptive fields of s as a new, unsaved record.
//
// Storage identity, creation time and partition are left empty for the destination insert to assign.
func (s *Song) Copy() *Song {
	c := &Song{
		UID:        s.UID,
		ArtistName: s.ArtistName,
		Title:      s.Title,
		AlbumName:  s.AlbumName,
		Price:      s.Price,
	}
	if s.Author != nil {
		author := *s.Author
		c.Author = &author
	}
	return c
}

// SameDescription reports whether two songs carry identical descriptive fields.
func (s *Song) SameDescription(o *Song) bool {
	if s.UID != o.UID || s.ArtistName != o.ArtistName || s.Title != o.Title ||
		s.AlbumName != o.AlbumName || s.Price != o.Price {
		return false
	}
	if (s.Author == nil) != (o.Author == nil) {
		return false
	}
	return s.Author == nil || *s.Author == *o.Author
}

// Submission carries the user-entered fields of a new catalog song.
type Submission struct {
	Genre      string
	ArtistName string
	Title      string
	AlbumName  string
	Price      string
}
