package models

// Edit operations are pure: each returns a new value and never touches the
// original or the network. Callers feed results through the query cache's
// mutate path to persist them.
//
// Indices must come from the same playlist snapshot the edit is applied to;
// behavior for out-of-range indices follows from the slice operations below
// (updates are identity, removes are identity).

// AddElement appends element to the playlist.
func AddElement(p Playlist, element PlaylistElement) Playlist {
	elements := make([]PlaylistElement, 0, len(p.Elements)+1)
	elements = append(elements, p.Elements...)
	elements = append(elements, element)
	p.Elements = elements
	return p
}

// UpdateElement replaces the element at index.
func UpdateElement(p Playlist, index int, element PlaylistElement) Playlist {
	if index < 0 || index >= len(p.Elements) {
		return p
	}
	elements := make([]PlaylistElement, len(p.Elements))
	copy(elements, p.Elements)
	elements[index] = element
	p.Elements = elements
	return p
}

// RemoveElement drops the element at index, shifting subsequent indices down.
func RemoveElement(p Playlist, index int) Playlist {
	if index < 0 || index >= len(p.Elements) {
		return p
	}
	elements := make([]PlaylistElement, 0, len(p.Elements)-1)
	elements = append(elements, p.Elements[:index]...)
	elements = append(elements, p.Elements[index+1:]...)
	p.Elements = elements
	return p
}

// AddSong appends song to the element.
func AddSong(e PlaylistElement, song Song) PlaylistElement {
	songs := make([]Song, 0, len(e.Songs)+1)
	songs = append(songs, e.Songs...)
	songs = append(songs, song)
	e.Songs = songs
	return e
}

// RemoveSong drops the song at index, shifting subsequent indices down.
func RemoveSong(e PlaylistElement, index int) PlaylistElement {
	if index < 0 || index >= len(e.Songs) {
		return e
	}
	songs := make([]Song, 0, len(e.Songs)-1)
	songs = append(songs, e.Songs[:index]...)
	songs = append(songs, e.Songs[index+1:]...)
	e.Songs = songs
	return e
}

// ElementFromAlbum folds an album search result into a playlist element.
func ElementFromAlbum(album AlbumSearchResult) PlaylistElement {
	artists := ""
	if len(album.Songs) > 0 {
		artists = album.Songs[0].Artists
	}
	return PlaylistElement{
		Name:     album.Name,
		Artists:  artists,
		ImageURL: album.ImageURL,
		Songs:    album.Songs,
	}
}
