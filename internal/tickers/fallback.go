package tickers

import "StockBoard/internal/model"

// FallbackTickers is used when the index sources are unavailable.
var FallbackTickers = []model.Ticker{
	{Symbol: "ABB", Name: "ABB Ltd"},
	{Symbol: "ALFA", Name: "Alfa Laval"},
	{Symbol: "ASSA.B", Name: "Assa Abloy"},
	{Symbol: "ATCO.A", Name: "Atlas Copco"},
	{Symbol: "AZN", Name: "AstraZeneca"},
	{Symbol: "BOL", Name: "Boliden"},
	{Symbol: "ELUX.B", Name: "Electrolux"},
	{Symbol: "ERIC.B", Name: "Ericsson"},
	{Symbol: "ESSITY.B", Name: "Essity"},
	{Symbol: "EVO", Name: "Evolution"},
	{Symbol: "GETI.B", Name: "Getinge"},
	{Symbol: "HEXA.B", Name: "Hexagon"},
	{Symbol: "HM.B", Name: "H&M"},
	{Symbol: "INVE.B", Name: "Investor"},
	{Symbol: "KINV.B", Name: "Kinnevik"},
	{Symbol: "NIBE.B", Name: "NIBE Industrier"},
	{Symbol: "SAAB.B", Name: "Saab"},
	{Symbol: "SAND", Name: "Sandvik"},
	{Symbol: "SCA.B", Name: "SCA"},
	{Symbol: "SEB.A", Name: "SEB"},
	{Symbol: "SHB.A", Name: "Handelsbanken"},
	{Symbol: "SINCH", Name: "Sinch"},
	{Symbol: "SKA.B", Name: "Skanska"},
	{Symbol: "SKF.B", Name: "SKF"},
	{Symbol: "SWED.A", Name: "Swedbank"},
	{Symbol: "TEL2.B", Name: "Tele2"},
	{Symbol: "TELIA", Name: "Telia Company"},
	{Symbol: "VOLV.B", Name: "Volvo"},
}
