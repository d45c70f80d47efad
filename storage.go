package main

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/biglinux/big-audio-converter-sub000/fs"
	"github.com/biglinux/big-audio-converter-sub000/log"
)

type FileContext struct {
	Audio string
	State string
}

/* OpenAudio resolves where the audio file's marker state lives and
 * restores it into the editor. */
func OpenAudio(file string) (files FileContext, err error) {
	files.Audio = file
	states, dberr := filesDB.StateFiles(file)
	if dberr != nil {
		log.DB.Printf("retrieving linked state file: %s: %v", file, dberr)
	}
	if len(states) == 0 {
		files.State = fs.Join(fs.SaveDir(), stateKey(file))
	} else {
		files.State = states[0]
		if len(states) > 1 {
			log.DB.Printf("multiple states available for audio %s; using %s", file, files.State)
		}
	}
	err = LoadStateFile(files.State)
	return
}

/* SaveMarkers writes the editor's segments to the state file and
 * records the association. */
func SaveMarkers(files FileContext) (err error) {
	if err = SaveStateFile(files.State); err != nil {
		return
	}
	if dberr := filesDB.Associate(files.State, files.Audio); dberr != nil {
		log.DB.Printf("associating %s -> %s: %v", files.State, files.Audio, dberr)
	}
	return
}

type FilesDB interface {
	StateFiles(audiofile string) ([]string, error)
	AudioFile(statefile string) (string, error)
	Associate(statefile, audiofile string) error
}

type filesSqlite struct {
	db          *sql.DB
	initialised bool
}

var filesDB filesSqlite

func (f *filesSqlite) withDB(fn func(db *sql.DB) error) (err error) {
	if f.db == nil {
		f.db, err = sql.Open("sqlite3", fs.Join(fs.SaveDir(), "files.db")+"?_busy_timeout=3500")
		if err != nil {
			return err
		}
	}
	if !f.initialised {
		if err = f.createSchema(f.db); err != nil {
			return err
		}
		f.initialised = true
	}
	return fn(f.db)
}

func (f *filesSqlite) createSchema(db *sql.DB) (err error) {
	var tx *sql.Tx
	if tx, err = db.Begin(); err == nil {
		var vers int
		defer commitUnlessErr(tx, &err)
		row := tx.QueryRow("PRAGMA schema_version;")
		if err = row.Scan(&vers); err == nil && vers == 0 {
			_, err = tx.Exec("CREATE TABLE paths (state TEXT NOT NULL PRIMARY KEY, audio TEXT NOT NULL, CHECK(length(state) > 0 AND length(audio) > 0));")
		}
	}
	return
}

func (f *filesSqlite) StateFiles(audiofile string) (statefiles []string, err error) {
	err = f.withDB(func(db *sql.DB) (err error) {
		var rows *sql.Rows
		if rows, err = db.Query("SELECT state FROM paths WHERE audio = ?", audiofile); err == nil {
			defer rows.Close()
			for rows.Next() {
				var s string
				rows.Scan(&s)
				statefiles = append(statefiles, s)
			}
		}
		return
	})
	return
}

func (f *filesSqlite) AudioFile(statefile string) (audiofile string, err error) {
	err = f.withDB(func(db *sql.DB) (err error) {
		row := db.QueryRow("SELECT audio FROM paths WHERE state = ?", statefile)
		return row.Scan(&audiofile)
	})
	return
}

/* Associate links statefile to audiofile; an existing link to a
 * different audio file is replaced (the state file tracks whatever was
 * last saved into it). */
func (f *filesSqlite) Associate(statefile, audiofile string) error {
	return f.withDB(func(db *sql.DB) (err error) {
		var tx *sql.Tx
		if tx, err = db.Begin(); err != nil {
			return
		}
		defer commitUnlessErr(tx, &err)
		row := tx.QueryRow("SELECT audio FROM paths WHERE state = ?", statefile)
		var audio string
		if err = row.Scan(&audio); err == sql.ErrNoRows {
			_, err = tx.Exec("INSERT INTO paths VALUES (?, ?)", statefile, audiofile)
		} else if err == nil && audio != audiofile {
			_, err = tx.Exec("UPDATE paths SET audio = ? WHERE state = ?", audiofile, statefile)
		}
		return
	})
}

func commitUnlessErr(tx *sql.Tx, err *error) {
	if *err == nil {
		*err = tx.Commit()
	}
	if *err != nil {
		tx.Rollback()
	}
}

/* IsStateFilename reports whether file is a saved marker state rather
 * than audio. */
func IsStateFilename(file string) bool {
	return strings.HasSuffix(strings.ToLower(file), ".cuts")
}
