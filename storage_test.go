package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglinux/big-audio-converter-sub000/fs"
)

func testFilesDB(t *testing.T) *filesSqlite {
	fs.SetSaveDir(t.TempDir())
	return &filesSqlite{}
}

func TestAssociateAndLookup(t *testing.T) {
	db := testFilesDB(t)
	require.NoError(t, db.Associate("/save/a.cuts", "/music/a.mp3"))

	states, err := db.StateFiles("/music/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, []string{"/save/a.cuts"}, states)

	audio, err := db.AudioFile("/save/a.cuts")
	require.NoError(t, err)
	assert.Equal(t, "/music/a.mp3", audio)
}

func TestAssociateReplacesStaleLink(t *testing.T) {
	db := testFilesDB(t)
	require.NoError(t, db.Associate("/save/a.cuts", "/music/a.mp3"))
	require.NoError(t, db.Associate("/save/a.cuts", "/music/b.mp3"))

	audio, err := db.AudioFile("/save/a.cuts")
	require.NoError(t, err)
	assert.Equal(t, "/music/b.mp3", audio)

	states, err := db.StateFiles("/music/a.mp3")
	require.NoError(t, err)
	assert.Empty(t, states, "the old audio file no longer resolves here")
}

func TestAssociateIdempotent(t *testing.T) {
	db := testFilesDB(t)
	require.NoError(t, db.Associate("/save/a.cuts", "/music/a.mp3"))
	require.NoError(t, db.Associate("/save/a.cuts", "/music/a.mp3"))

	states, err := db.StateFiles("/music/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, 1, len(states))
}

func TestStateFilesUnknownAudio(t *testing.T) {
	db := testFilesDB(t)
	states, err := db.StateFiles("/music/unknown.mp3")
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestIsStateFilename(t *testing.T) {
	assert.True(t, IsStateFilename("take1.mp3.cuts"))
	assert.True(t, IsStateFilename("TAKE1.MP3.CUTS"))
	assert.False(t, IsStateFilename("take1.mp3"))
}
