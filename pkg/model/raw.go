package model

// Raw rows as they appear in the yearly extracts. Coded fields are pointers:
// an empty cell decodes to nil and is carried through as NULL.

// RawCharacteristics is one row of {year}_caracteristiques
type RawCharacteristics struct {
	NumAcc int64  `csv:"Num_Acc"`
	An     *int   `csv:"an"`
	Mois   *int   `csv:"mois"`
	Jour   *int   `csv:"jour"`
	Hrmn   *int   `csv:"hrmn"`
	Lum    *int   `csv:"lum"`
	Agg    *int   `csv:"agg"`
	Int    *int   `csv:"int"`
	Atm    *int   `csv:"atm"`
	Col    *int   `csv:"col"`
	Com    *int   `csv:"com"`
	Adr    string `csv:"adr"`
	Gps    string `csv:"gps"`
	Lat    string `csv:"lat"`
	Long   string `csv:"long"`
	Dep    *int   `csv:"dep"`
}

// RawLocation is one row of {year}_lieux
type RawLocation struct {
	NumAcc  int64    `csv:"Num_Acc"`
	Catr    *int     `csv:"catr"`
	Voie    string   `csv:"voie"`
	V1      string   `csv:"v1"`
	V2      string   `csv:"v2"`
	Circ    *int     `csv:"circ"`
	Nbv     *int     `csv:"nbv"`
	Pr      string   `csv:"pr"`
	Pr1     string   `csv:"pr1"`
	Vosp    *int     `csv:"vosp"`
	Prof    *int     `csv:"prof"`
	Plan    *int     `csv:"plan"`
	Lartpc  *float64 `csv:"lartpc"`
	Larrout *float64 `csv:"larrout"`
	Surf    *int     `csv:"surf"`
	Infra   *int     `csv:"infra"`
	Situ    *int     `csv:"situ"`
	Env1    *int     `csv:"env1"`
}

// RawVehicle is one row of {year}_vehicules
type RawVehicle struct {
	NumAcc int64  `csv:"Num_Acc"`
	Senc   *int   `csv:"senc"`
	Catv   *int   `csv:"catv"`
	Occutc *int   `csv:"occutc"`
	Obs    *int   `csv:"obs"`
	Obsm   *int   `csv:"obsm"`
	Choc   *int   `csv:"choc"`
	Manv   *int   `csv:"manv"`
	NumVeh string `csv:"num_veh"`
}

// RawUser is one row of {year}_usagers
type RawUser struct {
	NumAcc int64  `csv:"Num_Acc"`
	Place  *int   `csv:"place"`
	Catu   *int   `csv:"catu"`
	Grav   *int   `csv:"grav"`
	Sexe   *int   `csv:"sexe"`
	Trajet *int   `csv:"trajet"`
	Secu   *int   `csv:"secu"`
	Locp   *int   `csv:"locp"`
	Actp   *int   `csv:"actp"`
	Etatp  *int   `csv:"etatp"`
	AnNais *int   `csv:"an_nais"`
	NumVeh string `csv:"num_veh"`
}
