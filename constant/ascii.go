package constant

// AsciiArtLogo is the application's ASCII art banner, rendered on the CLI root help screen.
const AsciiArtLogo = `
     _      _  ______ _
  __| |_ __(_)/ _| __/| |_ __  | | __ _ _   _
 / _' | '__| | |_|  _| | | '_ \| |/ _' | | | |
| (_| | |  | |  _| |   | | |_) | | (_| | |_| |
 \__,_|_|  |_|_| |_|   |_| .__/|_|\__,_|\__, |
                         |_|            |___/
`
