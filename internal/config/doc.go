// Package config loads hyperc.json, the project configuration of hyperc.
//
// A missing file means defaults; a present file only needs the fields it
// changes:
//
//	{
//	  "source": {"dirs": ["views"], "exclude": ["*_old.gsx"]},
//	  "build": {"sourceMaps": true},
//	  "dev": {"port": 8080, "static": "public"}
//	}
//
// Command-line flags override the file.
package config
