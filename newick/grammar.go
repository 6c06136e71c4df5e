package newick

// Grammar is the Newick syntax accepted by Parser, in the EBNF notation of
// golang.org/x/exp/ebnf. The character classes qchar and bchar are wider
// than shown: qchar is any character except a lone quote, and bchar is any
// non-space character except ( ) [ ] , : ;.
const Grammar = `
Tree     = Subtree ";" .
Subtree  = Leaf | Internal .
Internal = "(" Subtree { "," Subtree } ")" [ label ] [ ":" number ] .
Leaf     = label [ ":" number ] .

label    = quoted | bare .
quoted   = "'" { qchar | "''" } "'" .
bare     = bchar { bchar } .
qchar    = " " … "&" | "(" … "~" .
bchar    = "!" … "'" | "*" | "+" | "-" … "9" | "<" … "Z" | "\\" | "^" … "~" .

number   = [ "+" | "-" ] mantissa [ exponent ] .
mantissa = digit { digit } [ "." { digit } ] | "." digit { digit } .
exponent = ( "e" | "E" ) [ "+" | "-" ] digit { digit } .
digit    = "0" … "9" .
`
